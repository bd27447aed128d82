package db

import (
	"context"
	"fmt"
	"time"

	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

type LogConf struct {
	Level string
}

type Config struct {
	Host    string
	Port    int
	User    string
	PW      string
	DBName  string
	LogConf LogConf
}

type Datastore struct {
	db *gorm.DB
}

var datastore *Datastore

func InitPostgres(ctx context.Context, conf *Config) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		conf.Host, conf.Port, conf.User, conf.PW, conf.DBName)

	level := gormlogger.Warn
	if conf.LogConf.Level == "debug" {
		level = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		logger.Fatalf(ctx, "open postgres fail err: %+v", err)
	}
	if err := gdb.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		logger.Errorf(ctx, "install gorm tracing plugin err: %+v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Fatalf(ctx, "get sql db fail err: %+v", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	datastore = &Datastore{db: gdb}
}

func ClosePostgres(_ context.Context) {
	if datastore == nil {
		return
	}
	if sqlDB, err := datastore.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// DB returns nil until InitPostgres has run.
func DB() *Datastore {
	return datastore
}

func NewDatastore(gdb *gorm.DB) *Datastore {
	return &Datastore{db: gdb}
}

func (d *Datastore) DBIns() *gorm.DB {
	return d.db
}

func (d *Datastore) DBWithContext(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}
