package config

import "time"

type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageRedis    StorageBackend = "redis"
	StoragePostgres StorageBackend = "postgres"
)

// Remote is the hosted realtime database reached over REST.
type Remote struct {
	Addr      string        `mapstructure:"REMOTE_ADDR" default:"https://dwalast-default-rtdb.firebaseio.com"`
	AuthToken string        `mapstructure:"REMOTE_AUTH_TOKEN"`
	Timeout   time.Duration `mapstructure:"REMOTE_TIMEOUT" default:"30s"`
}

type Storage struct {
	Backend   StorageBackend `mapstructure:"STORAGE_BACKEND" default:"memory"`
	Namespace string         `mapstructure:"STORAGE_NAMESPACE" default:"drugguide:"`
}

type Cache struct {
	TTL time.Duration `mapstructure:"CACHE_TTL" default:"5m"`
}

type Import struct {
	Workers    int    `mapstructure:"IMPORT_WORKERS" default:"8"`
	ImportedBy string `mapstructure:"IMPORT_IMPORTED_BY" default:"admin"`
}

type Admin struct {
	Email     string        `mapstructure:"ADMIN_EMAIL"`
	Password  string        `mapstructure:"ADMIN_PASSWORD"`
	JWTSecret string        `mapstructure:"ADMIN_JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"ADMIN_TOKEN_TTL" default:"24h"`
}

type Database struct {
	Host     string `mapstructure:"DATABASE_HOST" default:"localhost"`
	Port     int    `mapstructure:"DATABASE_PORT" default:"5432"`
	Name     string `mapstructure:"DATABASE_NAME" default:"drugguide"`
	User     string `mapstructure:"DATABASE_USER" default:"postgres"`
	Password string `mapstructure:"DATABASE_PASSWORD" default:"drugguide"`
}

type Redis struct {
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
	// Enabled turns on pub/sub catalog invalidation across processes.
	Enabled bool `mapstructure:"REDIS_ENABLED" default:"false"`
}

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"drugguide"`
	Service  string `mapstructure:"SERVICE" default:"api"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	GrpcPort int    `mapstructure:"GRPC_PORT" default:"9090"`
	Env      string `mapstructure:"ENV" default:"dev"`
}

type Log struct {
	LogPath  string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
}

type Trace struct {
	Version        string `mapstructure:"TRACE_VERSION" default:"0.0.1"`
	TraceEndpoint  string `mapstructure:"TRACE_TRACEENDPOINT" default:""`
	MetricEndpoint string `mapstructure:"TRACE_METRICENDPOINT" default:""`
	TraceAK        string `mapstructure:"TRACE_TRACEAK" default:""`
	Stdout         bool   `mapstructure:"TRACE_STDOUT" default:"false"`
}
