package grpc

import (
	"context"
	"net/http"
	"testing"

	"github.com/dwalast/drugguide/pkg/repo/kv"
	"github.com/dwalast/drugguide/pkg/repo/remote/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func servingStatus(t *testing.T, p *Prober, service string) healthpb.HealthCheckResponse_ServingStatus {
	resp, err := p.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestProbe(t *testing.T) {
	srv := remotetest.New(t)
	p := NewProber(srv.Store(), kv.NewMemory())

	p.Probe(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, p, RemoteService))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, p, StorageService))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, p, ""))

	srv.Fail(http.MethodGet, "", http.StatusServiceUnavailable, 1)
	p.Probe(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, p, RemoteService))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, p, StorageService))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, p, ""))

	p.Probe(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, p, ""))
}
