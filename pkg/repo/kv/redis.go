package kv

import (
	"context"
	"errors"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	r "github.com/redis/go-redis/v9"
)

type redisImpl struct {
	client *r.Client
}

func NewRedis(client *r.Client) repo.KV {
	return &redisImpl{client: client}
}

func (k *redisImpl) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := k.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "redis kv get key: %s err: %+v", key, err)
		return nil, code.StorageErr.WithErr(err)
	}
	return v, nil
}

func (k *redisImpl) Set(ctx context.Context, key string, value []byte) error {
	if err := k.client.Set(ctx, key, value, 0).Err(); err != nil {
		logger.Errorf(ctx, "redis kv set key: %s err: %+v", key, err)
		return code.StorageErr.WithErr(err)
	}
	return nil
}

func (k *redisImpl) Delete(ctx context.Context, key string) error {
	if err := k.client.Del(ctx, key).Err(); err != nil {
		logger.Errorf(ctx, "redis kv del key: %s err: %+v", key, err)
		return code.StorageErr.WithErr(err)
	}
	return nil
}

func (k *redisImpl) Ping(ctx context.Context) error {
	if err := k.client.Ping(ctx).Err(); err != nil {
		return code.StorageErr.WithErr(err)
	}
	return nil
}
