// Package favorites keeps the ordered list of drug ids a device marked.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
)

type Store struct {
	mu sync.Mutex
	kv repo.KV
}

func New(kv repo.KV) *Store {
	return &Store{kv: kv}
}

// List returns the favorite ids in the order they were added. Unreadable
// data reads as an empty list.
func (s *Store) List(ctx context.Context) []string {
	raw, err := s.kv.Get(ctx, constant.FavoritesKey)
	if err != nil {
		if !errors.Is(err, code.RecordNotFound) {
			logger.Warnf(ctx, "load favorites err: %+v", err)
		}
		return []string{}
	}
	ids := make([]string, 0)
	if err := json.Unmarshal(raw, &ids); err != nil {
		logger.Warnf(ctx, "decode favorites err: %+v", err)
		return []string{}
	}
	return ids
}

func (s *Store) IsFavorite(ctx context.Context, id string) bool {
	for _, v := range s.List(ctx) {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle adds id when absent and removes it otherwise. It returns whether
// id is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.List(ctx)
	kept := make([]string, 0, len(ids)+1)
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	added := len(kept) == len(ids)
	if added {
		kept = append(kept, id)
	}

	raw, _ := json.Marshal(kept)
	if err := s.kv.Set(ctx, constant.FavoritesKey, raw); err != nil {
		logger.Errorf(ctx, "save favorites err: %+v", err)
		return !added, err
	}
	return added, nil
}
