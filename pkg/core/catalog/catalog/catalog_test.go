package catalog_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/cache"
	"github.com/dwalast/drugguide/pkg/core/catalog"
	impl "github.com/dwalast/drugguide/pkg/core/catalog/catalog"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/dwalast/drugguide/pkg/core/notify/events"
	"github.com/dwalast/drugguide/pkg/repo/kv"
	"github.com/dwalast/drugguide/pkg/repo/remote/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offline struct{}

func (offline) Online(context.Context) bool { return false }

func seed(srv *remotetest.Server) {
	srv.Seed("drugs", map[string]any{
		"0":          map[string]any{"name": "Panadol", "newPrice": 15, "oldPrice": 12},
		"1":          map[string]any{"name": "test", "newPrice": 10, "oldPrice": 10},
		"10":         map[string]any{"name": "Augmentin", "newPrice": "90,5", "oldPrice": 80},
		"2":          map[string]any{"name": "Brufen", "newPrice": 0, "oldPrice": 40, "no": 2002},
		"updateDate": "1/10/2026",
		"lastImport": "2026-10-01T00:00:00.000Z",
	})
	srv.Seed("shortages", map[string]any{
		"a": map[string]any{"drugName": "Insulin", "status": "critical"},
		"b": map[string]any{"drugName": "Eltroxin", "status": "moderate"},
	})
}

func newService(t *testing.T, srv *remotetest.Server, opts ...impl.Option) (catalog.Service, *cache.Cache) {
	c := cache.New(kv.NewMemory())
	opts = append([]impl.Option{impl.WithRetry(2, 5*time.Millisecond)}, opts...)
	return impl.NewCatalog(context.Background(), srv.Store(), c, opts...), c
}

func TestFetchFromRemoteThenCache(t *testing.T) {
	ctx := context.Background()
	srv := remotetest.New(t)
	seed(srv)
	svc, c := newService(t, srv)

	res, err := svc.FetchDrugsAndShortages(ctx, false)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "1/10/2026", res.LastUpdated)
	assert.Equal(t, 1, res.CriticalShortages)

	require.Len(t, res.Drugs, 3)
	names := []string{res.Drugs[0].Name, res.Drugs[1].Name, res.Drugs[2].Name}
	assert.Equal(t, []string{"Panadol", "Brufen", "Augmentin"}, names)
	for i, d := range res.Drugs {
		assert.Equal(t, i, d.OriginalOrder)
	}
	assert.Equal(t, 3.0, res.Drugs[0].PriceChange)
	assert.Equal(t, 25.0, res.Drugs[0].PriceChangePercent)
	assert.Equal(t, 40.0, res.Drugs[1].NewPrice)
	assert.Equal(t, "2002", res.Drugs[1].No)
	assert.Equal(t, 90.5, res.Drugs[2].NewPrice)

	_, ok := c.Get(ctx)
	assert.True(t, ok)

	cached, err := svc.FetchDrugsAndShortages(ctx, false)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, res.Drugs, cached.Drugs)
	assert.Equal(t, 1, cached.CriticalShortages)
	assert.Equal(t, 1, srv.Requests(http.MethodGet, "drugs"))

	_, err = svc.FetchDrugsAndShortages(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Requests(http.MethodGet, "drugs"))
}

func TestShortageFailureIsTolerated(t *testing.T) {
	srv := remotetest.New(t)
	seed(srv)
	srv.Fail(http.MethodGet, "shortages", http.StatusInternalServerError, 1)
	svc, _ := newService(t, srv)

	res, err := svc.FetchDrugsAndShortages(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, res.Drugs, 3)
	assert.Zero(t, res.CriticalShortages)
}

func TestRetryRecovers(t *testing.T) {
	srv := remotetest.New(t)
	seed(srv)
	srv.Fail(http.MethodGet, "drugs", http.StatusServiceUnavailable, 2)
	svc, _ := newService(t, srv)

	res, err := svc.FetchDrugsAndShortages(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, srv.Requests(http.MethodGet, "drugs"))
}

func TestRetryIsCapped(t *testing.T) {
	srv := remotetest.New(t)
	seed(srv)
	srv.Fail(http.MethodGet, "drugs", http.StatusNotFound, 10)
	svc, _ := newService(t, srv)

	_, err := svc.FetchDrugsAndShortages(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, code.RemoteNotFound, code.CodeOf(err))
	assert.Equal(t, "البيانات غير موجودة في قاعدة البيانات", code.Message(err))
	assert.Equal(t, 3, srv.Requests(http.MethodGet, "drugs"))
}

func TestStatusMessages(t *testing.T) {
	srv := remotetest.New(t)
	seed(srv)
	svc, _ := newService(t, srv, impl.WithRetry(0, 0))

	srv.Fail(http.MethodGet, "drugs", http.StatusForbidden, 1)
	_, err := svc.FetchDrugsAndShortages(context.Background(), true)
	assert.Equal(t, "خطأ في التحميل: 403", code.Message(err))

	srv.Fail(http.MethodGet, "drugs", http.StatusBadGateway, 1)
	_, err = svc.FetchDrugsAndShortages(context.Background(), true)
	assert.Equal(t, code.RemoteServerErr, code.CodeOf(err))
}

func TestOfflineSkipsNetworkAndRetry(t *testing.T) {
	srv := remotetest.New(t)
	seed(srv)
	svc, _ := newService(t, srv, impl.WithNetworkStatus(offline{}))

	_, err := svc.FetchDrugsAndShortages(context.Background(), false)
	assert.Equal(t, code.Offline, code.CodeOf(err))
	assert.Zero(t, srv.Requests("", "drugs"))
}

func TestNoValidDrugs(t *testing.T) {
	srv := remotetest.New(t)
	srv.Seed("drugs", map[string]any{
		"0": map[string]any{"name": "aaa", "newPrice": 5},
		"1": map[string]any{"name": "Panadol", "newPrice": 0, "oldPrice": 0},
	})
	svc, c := newService(t, srv)

	_, err := svc.FetchDrugsAndShortages(context.Background(), false)
	assert.Equal(t, code.NoValidDrugs, code.CodeOf(err))
	assert.Equal(t, 3, srv.Requests(http.MethodGet, "drugs"))
	_, ok := c.Get(context.Background())
	assert.False(t, ok)
}

func TestMissingDrugsNode(t *testing.T) {
	srv := remotetest.New(t)
	svc, _ := newService(t, srv, impl.WithRetry(0, 0))

	_, err := svc.FetchDrugsAndShortages(context.Background(), false)
	assert.Equal(t, code.RemoteDecodeErr, code.CodeOf(err))
}

func TestTimeout(t *testing.T) {
	srv := remotetest.New(t)
	seed(srv)
	srv.SetDelay(300 * time.Millisecond)
	svc, _ := newService(t, srv, impl.WithRetry(0, 0), impl.WithTimeout(30*time.Millisecond))

	_, err := svc.FetchDrugsAndShortages(context.Background(), false)
	assert.Equal(t, code.RemoteTimeout, code.CodeOf(err))
	assert.Equal(t, "انتهت مهلة الاتصال، يرجى المحاولة مرة أخرى", code.Message(err))
}

func TestArrayShapedDrugs(t *testing.T) {
	srv := remotetest.New(t)
	srv.Seed("drugs", []any{
		map[string]any{"name": "Panadol", "newPrice": 15, "oldPrice": 12},
		nil,
		map[string]any{"name": "Brufen", "newPrice": 40, "oldPrice": 40},
	})
	svc, _ := newService(t, srv)

	res, err := svc.FetchDrugsAndShortages(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, res.Drugs, 2)
	assert.Equal(t, "2", res.Drugs[1].ID)
	assert.Equal(t, 1, res.Drugs[1].OriginalOrder)
}

func TestNonFiniteKeysAreNotEntries(t *testing.T) {
	srv := remotetest.New(t)
	srv.Seed("drugs", map[string]any{
		"0":        map[string]any{"name": "Panadol", "newPrice": 15, "oldPrice": 12},
		"NaN":      map[string]any{"name": "Ghost", "newPrice": 1, "oldPrice": 1},
		"inf":      map[string]any{"name": "Ghost", "newPrice": 1, "oldPrice": 1},
		"Infinity": map[string]any{"name": "Ghost", "newPrice": 1, "oldPrice": 1},
	})
	svc, _ := newService(t, srv)

	res, err := svc.FetchDrugsAndShortages(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, res.Drugs, 1)
	assert.Equal(t, "Panadol", res.Drugs[0].Name)
}

func TestInvalidateNotifyClearsCache(t *testing.T) {
	ctx := context.Background()
	srv := remotetest.New(t)
	seed(srv)
	center := events.NewLocal()
	svc, c := newService(t, srv, impl.WithMsgCenter(center))

	_, err := svc.FetchDrugsAndShortages(ctx, false)
	require.NoError(t, err)
	_, ok := c.Get(ctx)
	require.True(t, ok)

	require.NoError(t, center.Broadcast(ctx, &notify.SendMsg{Channel: notify.CatalogInvalidate, Reason: "import"}))
	require.NoError(t, center.Close(ctx))
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}
