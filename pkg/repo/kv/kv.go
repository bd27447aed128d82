package kv

import (
	"context"
	"fmt"

	"github.com/dwalast/drugguide/internal/config"
	"github.com/dwalast/drugguide/pkg/middleware/db"
	"github.com/dwalast/drugguide/pkg/middleware/redis"
	"github.com/dwalast/drugguide/pkg/repo"
)

// New builds the configured backend. Redis and postgres must be initialized
// before it is called.
func New(_ context.Context) (repo.KV, error) {
	conf := config.Global().Storage
	var store repo.KV
	switch conf.Backend {
	case config.StorageMemory, "":
		store = NewMemory()
	case config.StorageRedis:
		client := redis.GetClient()
		if client == nil {
			return nil, fmt.Errorf("storage backend redis: client not initialized")
		}
		store = NewRedis(client)
	case config.StoragePostgres:
		datastore := db.DB()
		if datastore == nil {
			return nil, fmt.Errorf("storage backend postgres: database not initialized")
		}
		store = NewSQL(datastore)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", conf.Backend)
	}
	return WithNamespace(store, conf.Namespace), nil
}
