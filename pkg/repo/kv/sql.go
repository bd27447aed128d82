package kv

import (
	"context"
	"errors"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/middleware/db"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqlImpl struct {
	*db.Datastore
}

// NewSQL stores every key as one row of kv_entries. Values must be JSON.
func NewSQL(store *db.Datastore) repo.KV {
	return &sqlImpl{Datastore: store}
}

func (s *sqlImpl) Get(ctx context.Context, key string) ([]byte, error) {
	entry := &model.KVEntry{}
	if err := s.DBWithContext(ctx).
		Where("key = ?", key).
		Take(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "sql kv get key: %s err: %+v", key, err)
		return nil, code.StorageErr.WithErr(err)
	}
	return entry.Value, nil
}

func (s *sqlImpl) Set(ctx context.Context, key string, value []byte) error {
	entry := &model.KVEntry{Key: key, Value: datatypes.JSON(value)}
	if err := s.DBWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(entry).Error; err != nil {
		logger.Errorf(ctx, "sql kv set key: %s err: %+v", key, err)
		return code.StorageErr.WithErr(err)
	}
	return nil
}

func (s *sqlImpl) Delete(ctx context.Context, key string) error {
	if err := s.DBWithContext(ctx).
		Where("key = ?", key).
		Delete(&model.KVEntry{}).Error; err != nil {
		logger.Errorf(ctx, "sql kv delete key: %s err: %+v", key, err)
		return code.StorageErr.WithErr(err)
	}
	return nil
}

func (s *sqlImpl) Ping(ctx context.Context) error {
	sqlDB, err := s.DBIns().DB()
	if err != nil {
		return code.StorageErr.WithErr(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return code.StorageErr.WithErr(err)
	}
	return nil
}
