package kv

import (
	"context"

	"github.com/alphadose/haxmap"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/repo"
)

type memoryImpl struct {
	data *haxmap.Map[string, []byte]
}

// NewMemory returns a KV that lives as long as the process.
func NewMemory() repo.KV {
	return &memoryImpl{data: haxmap.New[string, []byte]()}
}

func (m *memoryImpl) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data.Get(key)
	if !ok {
		return nil, code.RecordNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *memoryImpl) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.data.Set(key, v)
	return nil
}

func (m *memoryImpl) Delete(_ context.Context, key string) error {
	m.data.Del(key)
	return nil
}

func (m *memoryImpl) Ping(_ context.Context) error {
	return nil
}
