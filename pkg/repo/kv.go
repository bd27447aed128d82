package repo

import "context"

// KV is the process-local persistent key-value storage that plays the role
// of browser local storage. Get returns code.RecordNotFound for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
