package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/utils"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	RemoteService  = "drugguide.RemoteStore"
	StorageService = "drugguide.Storage"

	probeInterval = 30 * time.Second
	probeTimeout  = 5 * time.Second
)

// Prober keeps the grpc health status of the RemoteStore and the local
// storage current.
type Prober struct {
	remote repo.RemoteStore
	kv     repo.KV
	health *health.Server
}

func NewProber(remote repo.RemoteStore, kv repo.KV) *Prober {
	return &Prober{
		remote: remote,
		kv:     kv,
		health: health.NewServer(),
	}
}

// Probe pings both dependencies once. The overall status is serving only
// when both are.
func (p *Prober) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	overall := healthpb.HealthCheckResponse_SERVING
	for name, ping := range map[string]func(context.Context) error{
		RemoteService:  p.remote.Ping,
		StorageService: p.kv.Ping,
	} {
		status := healthpb.HealthCheckResponse_SERVING
		if err := ping(ctx); err != nil {
			logger.Warnf(ctx, "health probe %s err: %+v", name, err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
		}
		p.health.SetServingStatus(name, status)
	}
	p.health.SetServingStatus("", overall)
}

func (p *Prober) run(ctx context.Context) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		p.Probe(ctx)
		select {
		case <-ctx.Done():
			p.health.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

func NewServer(ctx context.Context, port int, p *Prober) (*ggrpc.Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	s := ggrpc.NewServer(
		ggrpc.UnaryInterceptor(UnaryLogInterceptor()),
		ggrpc.StreamInterceptor(StreamLogInterceptor()),
	)
	reflection.Register(s)
	healthpb.RegisterHealthServer(s, p.health)

	utils.SafelyGo(func() {
		p.run(ctx)
	}, func(err error) {
		logger.Errorf(ctx, "grpc health prober err: %+v", err)
	})

	go func() {
		logger.Infof(ctx, "gRPC server starting on port %d", port)
		if err := s.Serve(lis); err != nil {
			logger.Errorf(ctx, "gRPC server error: %v", err)
		}
	}()

	return s, nil
}
