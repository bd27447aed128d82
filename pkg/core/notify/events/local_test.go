package events

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDispatch(t *testing.T) {
	ctx := context.Background()
	center := NewLocal()
	var got atomic.Value
	require.NoError(t, center.Registry(ctx, notify.CatalogInvalidate, func(_ context.Context, msg string) error {
		got.Store(msg)
		return nil
	}))

	require.NoError(t, center.Broadcast(ctx, &notify.SendMsg{Channel: notify.CatalogInvalidate, Reason: "import"}))
	require.NoError(t, center.Close(ctx))

	raw, ok := got.Load().(string)
	require.True(t, ok)
	msg := &notify.SendMsg{}
	require.NoError(t, json.Unmarshal([]byte(raw), msg))
	assert.Equal(t, "import", msg.Reason)
	assert.False(t, msg.UUID.IsNil())
	assert.NotZero(t, msg.Timestamp)
}

type ctxKey struct{}

func TestLocalHandlerOutlivesCaller(t *testing.T) {
	center := NewLocal()
	release := make(chan struct{})
	var errAfter, leaked atomic.Value
	require.NoError(t, center.Registry(context.Background(), notify.CatalogInvalidate, func(ctx context.Context, _ string) error {
		<-release
		errAfter.Store(ctx.Err() != nil)
		leaked.Store(ctx.Value(ctxKey{}) != nil)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "request"))
	require.NoError(t, center.Broadcast(ctx, &notify.SendMsg{Channel: notify.CatalogInvalidate}))
	cancel()
	close(release)
	require.NoError(t, center.Close(context.Background()))

	assert.Equal(t, false, errAfter.Load())
	assert.Equal(t, false, leaked.Load())
}

func TestLocalDuplicateRegistry(t *testing.T) {
	ctx := context.Background()
	center := NewLocal()
	noop := func(context.Context, string) error { return nil }
	require.NoError(t, center.Registry(ctx, notify.CatalogInvalidate, noop))
	err := center.Registry(ctx, notify.CatalogInvalidate, noop)
	assert.Equal(t, code.NotifyActionAlreadyRegistryErr, code.CodeOf(err))
}

func TestLocalWithoutHandler(t *testing.T) {
	assert.NoError(t, NewLocal().Broadcast(context.Background(), &notify.SendMsg{Channel: notify.CatalogInvalidate}))
}

func TestLocalHandlerPanicIsContained(t *testing.T) {
	ctx := context.Background()
	center := NewLocal()
	var calls atomic.Int32
	require.NoError(t, center.Registry(ctx, notify.CatalogInvalidate, func(context.Context, string) error {
		calls.Add(1)
		panic("boom")
	}))
	require.NoError(t, center.Broadcast(ctx, &notify.SendMsg{Channel: notify.CatalogInvalidate}))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.NoError(t, center.Close(ctx))
}
