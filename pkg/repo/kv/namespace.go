package kv

import (
	"context"

	"github.com/dwalast/drugguide/pkg/repo"
)

type namespaced struct {
	prefix string
	inner  repo.KV
}

// WithNamespace prefixes every key so several deployments can share one
// backend.
func WithNamespace(inner repo.KV, prefix string) repo.KV {
	if prefix == "" {
		return inner
	}
	return &namespaced{prefix: prefix, inner: inner}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Ping(ctx context.Context) error {
	return n.inner.Ping(ctx)
}
