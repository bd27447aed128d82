package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// quiet reports methods polled often enough that logging them is noise.
func quiet(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/grpc.reflection.") ||
		strings.HasPrefix(fullMethod, "/grpc.health.")
}

func UnaryLogInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Errorf(ctx, "grpc %s %s %s", info.FullMethod, status.Code(err), time.Since(start))
		} else if !quiet(info.FullMethod) {
			logger.Infof(ctx, "grpc %s OK %s", info.FullMethod, time.Since(start))
		}
		return resp, err
	}
}

func StreamLogInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		if err != nil {
			logger.Errorf(ss.Context(), "grpc stream %s %s %s", info.FullMethod, status.Code(err), time.Since(start))
		} else if !quiet(info.FullMethod) {
			logger.Infof(ss.Context(), "grpc stream %s closed %s", info.FullMethod, time.Since(start))
		}
		return err
	}
}
