package logger

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path       string
	LogLevel   string
	ServiceEnv ServiceEnv
}

var (
	sugar  *otelzap.SugaredLogger
	writer *lumberjack.Logger
)

func init() {
	sugar = otelzap.New(zap.NewNop()).Sugar()
}

func Init(conf *LogConfig) {
	level, err := zapcore.ParseLevel(conf.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encConf := zap.NewProductionEncoderConfig()
	encConf.TimeKey = "time"
	encConf.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encConf), zapcore.Lock(os.Stdout), level),
	}
	if conf.Path != "" {
		writer = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encConf), zapcore.AddSync(writer), level))
	}

	base := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.String("platform", conf.ServiceEnv.Platform),
			zap.String("service", conf.ServiceEnv.Service),
			zap.String("env", conf.ServiceEnv.Env),
		))

	sugar = otelzap.New(base, otelzap.WithMinLevel(level)).Sugar()
}

func Close() {
	if sugar != nil {
		_ = sugar.Sync()
	}
	if writer != nil {
		_ = writer.Close()
	}
}

func Debugf(ctx context.Context, format string, args ...any) {
	sugar.Ctx(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	sugar.Ctx(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	sugar.Ctx(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	sugar.Ctx(ctx).Errorf(format, args...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	sugar.Ctx(ctx).Fatalf(format, args...)
}

// LogWithWriter logs one line per HTTP request.
func LogWithWriter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		ctx.Next()

		status := ctx.Writer.Status()
		latency := time.Since(start)
		if status >= 500 {
			Errorf(ctx, "%s %s %d %s %s", ctx.Request.Method, path, status, latency, ctx.Errors.String())
			return
		}
		Infof(ctx, "%s %s %d %s", ctx.Request.Method, path, status, latency)
	}
}
