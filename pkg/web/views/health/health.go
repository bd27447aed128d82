package health

import (
	"context"
	"net/http"

	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/middleware/db"
	"github.com/dwalast/drugguide/pkg/middleware/redis"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/gin-gonic/gin"
)

// Health is a simple health check.
func Health(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Live reports that the process is alive.
func Live(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type Handle struct {
	remote repo.RemoteStore
	kv     repo.KV
}

func NewHealthHandle(s *app.Services) *Handle {
	return &Handle{remote: s.Remote, kv: s.KV}
}

// Check pings every downstream dependency. Redis and postgres are only
// reported when they were initialized.
func (h *Handle) Check(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{}
	healthy := true
	probe := func(name string, ping func(context.Context) error) {
		if err := ping(ctx); err != nil {
			checks[name] = "unhealthy"
			healthy = false
			return
		}
		checks[name] = "ok"
	}

	probe("remote", h.remote.Ping)
	probe("storage", h.kv.Ping)

	if ds := db.DB(); ds != nil {
		probe("postgres", func(ctx context.Context) error {
			sqlDB, err := ds.DBIns().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if rc := redis.GetClient(); rc != nil {
		probe("redis", func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		})
	}
	return checks, healthy
}

// Ready is a readiness probe over all downstream dependencies.
func (h *Handle) Ready(g *gin.Context) {
	checks, healthy := h.Check(g.Request.Context())

	status := http.StatusOK
	msg := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		msg = "not_ready"
	}

	g.JSON(status, gin.H{
		"status": msg,
		"checks": checks,
	})
}
