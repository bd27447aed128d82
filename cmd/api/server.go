package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/internal/config"
	dggrpc "github.com/dwalast/drugguide/pkg/grpc"
	"github.com/dwalast/drugguide/pkg/middleware/db"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/middleware/redis"
	"github.com/dwalast/drugguide/pkg/middleware/trace"
	"github.com/dwalast/drugguide/pkg/repo/migrate"
	"github.com/dwalast/drugguide/pkg/utils"
	"github.com/dwalast/drugguide/pkg/web"
	"github.com/dwalast/drugguide/pkg/web/views/notify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func NewWeb() *cobra.Command {
	return &cobra.Command{
		Use:          "apiserver",
		Long:         "Start the API server (HTTP + gRPC health)",
		SilenceUsage: true,
		PreRunE:      initWeb,
		RunE:         newRouter,
		PostRunE:     cleanWebResource,
	}
}

func NewMigrate() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Long:         "Create the tables of the postgres storage backend",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			initPostgres(cmd.Context())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate.Table(cmd.Root().Context())
		},
		PostRunE: func(cmd *cobra.Command, _ []string) error {
			db.ClosePostgres(cmd.Context())
			return nil
		},
	}
}

func initPostgres(ctx context.Context) {
	conf := config.Global()
	db.InitPostgres(ctx, &db.Config{
		Host: conf.Database.Host, Port: conf.Database.Port,
		User: conf.Database.User, PW: conf.Database.Password,
		DBName: conf.Database.Name, LogConf: db.LogConf{Level: conf.Log.LogLevel},
	})
}

// InitStorage connects the backends the configuration asks for: postgres
// for the sql storage, redis for the redis storage or cross-process events.
func InitStorage(ctx context.Context) {
	conf := config.Global()
	if conf.Storage.Backend == config.StoragePostgres {
		initPostgres(ctx)
	}
	if conf.Storage.Backend == config.StorageRedis || conf.Redis.Enabled {
		redis.InitRedis(ctx, &redis.Redis{
			Host: conf.Redis.Host, Port: conf.Redis.Port,
			Password: conf.Redis.Password, DB: conf.Redis.DB,
		})
	}
}

// CloseStorage is safe to call when nothing was initialized.
func CloseStorage(ctx context.Context) {
	redis.CloseRedis(ctx)
	db.ClosePostgres(ctx)
}

func initWeb(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	trace.InitTrace(cmd.Context(), &trace.InitConfig{
		ServiceName:    fmt.Sprintf("%s-%s", conf.Server.Service, conf.Server.Platform),
		Version:        conf.Trace.Version,
		TraceEndpoint:  conf.Trace.TraceEndpoint,
		MetricEndpoint: conf.Trace.MetricEndpoint,
		TraceAK:        conf.Trace.TraceAK,
		Stdout:         conf.Trace.Stdout,
	})
	InitStorage(cmd.Context())
	return nil
}

func newRouter(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Root().Context()
	services, err := app.New(ctx, app.WithWSClient(notify.NewWSClient()))
	if err != nil {
		logger.Errorf(ctx, "init services err: %+v", err)
		return err
	}
	defer func() {
		if err := services.Close(context.Background()); err != nil {
			logger.Warnf(ctx, "close services err: %+v", err)
		}
		_ = services.WSClient.Close()
	}()

	router := gin.Default()
	web.NewRouter(ctx, router, services)
	conf := config.Global()
	port := conf.Server.Port
	addr := ":" + strconv.Itoa(port)

	httpServer := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       30 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	fmt.Printf("API Server starting on http://0.0.0.0:%d\n", port)

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(cmd.Context(), "start server err: %v\n", err)
		}
	}, func(err error) {
		logger.Errorf(cmd.Context(), "run http server err: %+v", err)
		os.Exit(1)
	})

	grpcPort := conf.Server.GrpcPort
	grpcServer, err := dggrpc.NewServer(ctx, grpcPort, dggrpc.NewProber(services.Remote, services.KV))
	if err != nil {
		logger.Errorf(cmd.Context(), "start gRPC server err: %+v", err)
	} else {
		fmt.Printf("gRPC Server starting on port %d\n", grpcPort)
	}

	fmt.Printf("Server started. Press Ctrl+C to shutdown.\n")
	<-cmd.Context().Done()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("shut down server err: %+v", err)
	}
	return nil
}

func cleanWebResource(cmd *cobra.Command, _ []string) error {
	CloseStorage(cmd.Context())
	trace.CloseTrace()
	return nil
}
