package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/core/cache"
	"github.com/dwalast/drugguide/pkg/core/catalog"
	"github.com/dwalast/drugguide/pkg/core/drug"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/dwalast/drugguide/pkg/core/shortage"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/olahol/melody"
	"golang.org/x/sync/errgroup"
)

type Option func(*catalogImpl)

func WithNetworkStatus(n catalog.NetworkStatus) Option {
	return func(c *catalogImpl) {
		c.network = n
	}
}

func WithMsgCenter(center notify.MsgCenter) Option {
	return func(c *catalogImpl) {
		c.msgCenter = center
	}
}

// WithWSClient forwards invalidation events to websocket subscribers.
func WithWSClient(ws *melody.Melody) Option {
	return func(c *catalogImpl) {
		c.wsClient = ws
	}
}

// WithRetry overrides the retry budget and the linear delay step.
func WithRetry(maxRetries int, step time.Duration) Option {
	return func(c *catalogImpl) {
		c.maxRetries = maxRetries
		c.retryStep = step
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *catalogImpl) {
		c.timeout = d
	}
}

type catalogImpl struct {
	remote     repo.RemoteStore
	cache      *cache.Cache
	shortages  *shortage.Manager
	network    catalog.NetworkStatus
	msgCenter  notify.MsgCenter
	wsClient   *melody.Melody
	timeout    time.Duration
	maxRetries int
	retryStep  time.Duration
}

func NewCatalog(ctx context.Context, remote repo.RemoteStore, c *cache.Cache, opts ...Option) catalog.Service {
	impl := &catalogImpl{
		remote:     remote,
		cache:      c,
		shortages:  shortage.New(remote),
		network:    catalog.AlwaysOnline{},
		timeout:    constant.FetchTimeout,
		maxRetries: constant.FetchMaxRetries,
		retryStep:  constant.FetchRetryStep,
	}
	for _, opt := range opts {
		opt(impl)
	}
	if impl.msgCenter != nil {
		if err := impl.msgCenter.Registry(ctx, notify.CatalogInvalidate, impl.OnCatalogNotify); err != nil {
			logger.Errorf(ctx, "Registry CatalogInvalidate fail err: %+v", err)
		}
	}
	return impl
}

func (c *catalogImpl) FetchDrugsAndShortages(ctx context.Context, forceRefresh bool) (*catalog.FetchResult, error) {
	if !forceRefresh {
		if snapshot, ok := c.cache.Get(ctx); ok {
			critical, err := c.shortages.CriticalCount(ctx)
			if err != nil {
				logger.Warnf(ctx, "background shortage count err: %+v", err)
			}
			return &catalog.FetchResult{
				Drugs:             snapshot.Drugs,
				LastUpdated:       snapshot.LastUpdated,
				CriticalShortages: critical,
				FromCache:         true,
			}, nil
		}
	}

	for attempt := 0; ; attempt++ {
		res, err := c.fetchOnce(ctx)
		if err == nil {
			res.Attempts = attempt + 1
			return res, nil
		}
		if attempt >= c.maxRetries || !c.network.Online(ctx) || ctx.Err() != nil {
			return nil, err
		}

		delay := c.retryStep * time.Duration(attempt+1)
		logger.Warnf(ctx, "fetch drugs attempt %d failed, retry in %s err: %+v", attempt+1, delay, err)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		}
	}
}

func (c *catalogImpl) fetchOnce(ctx context.Context) (*catalog.FetchResult, error) {
	if !c.network.Online(ctx) {
		return nil, code.Offline
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var drugsRaw, shortagesRaw json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.remote.Get(gctx, constant.DrugsPath, nil, &drugsRaw)
	})
	g.Go(func() error {
		if err := c.remote.Get(gctx, constant.ShortagesPath, nil, &shortagesRaw); err != nil {
			logger.Warnf(ctx, "fetch shortages err: %+v", err)
			shortagesRaw = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, c.userError(ctx, err)
	}

	entries, lastUpdated, err := decodeDrugs(drugsRaw)
	if err != nil {
		logger.Errorf(ctx, "decode drugs err: %+v", err)
		return nil, code.RemoteDecodeErr.WithCause(err)
	}

	drugs := make([]model.Drug, 0, len(entries))
	for _, e := range entries {
		if !drug.IsValid(e.raw) {
			continue
		}
		drugs = append(drugs, drug.Normalize(e.key, e.raw, len(drugs)))
	}
	if len(drugs) == 0 {
		return nil, code.NoValidDrugs
	}

	critical := 0
	if list, err := shortage.Decode(shortagesRaw); err == nil {
		critical = shortage.CountCritical(list)
	} else {
		logger.Warnf(ctx, "decode shortages err: %+v", err)
	}

	c.cache.Set(ctx, drugs, lastUpdated)
	return &catalog.FetchResult{
		Drugs:             drugs,
		LastUpdated:       lastUpdated,
		CriticalShortages: critical,
	}, nil
}

// userError turns a remote failure into the error users see.
func (c *catalogImpl) userError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || code.CodeOf(err) == code.RemoteTimeout:
		return code.RemoteTimeout.WithCause(err)
	case !c.network.Online(ctx):
		return code.Offline.WithCause(err)
	}

	status := repo.HTTPStatus(err)
	switch {
	case status == http.StatusNotFound:
		return code.RemoteNotFound.WithCause(err)
	case status >= http.StatusInternalServerError:
		return code.RemoteServerErr.WithCause(err)
	case status > 0:
		return code.LoadFailed.WithMsgf("خطأ في التحميل: %d", status)
	case code.CodeOf(err) == code.RemoteDecodeErr:
		return err
	default:
		return code.FetchFailed.WithCause(err)
	}
}

type entry struct {
	key string
	raw model.RawRecord
}

// decodeDrugs keeps the numeric keys of the drugs node in numeric order.
// The node may come back as an object or, for dense keys, as an array.
func decodeDrugs(raw json.RawMessage) ([]entry, string, error) {
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, "", err
	}

	switch n := node.(type) {
	case []any:
		out := make([]entry, 0, len(n))
		for i, v := range n {
			if rec, ok := v.(map[string]any); ok {
				out = append(out, entry{key: strconv.Itoa(i), raw: rec})
			}
		}
		return out, "", nil
	case map[string]any:
		lastUpdated, _ := n["updateDate"].(string)
		type keyed struct {
			entry
			n float64
		}
		numeric := make([]keyed, 0, len(n))
		for k, v := range n {
			f, ok := drug.NumericKey(k)
			if !ok {
				continue
			}
			rec, _ := v.(map[string]any)
			numeric = append(numeric, keyed{entry: entry{key: k, raw: rec}, n: f})
		}
		sort.SliceStable(numeric, func(i, j int) bool { return numeric[i].n < numeric[j].n })
		out := make([]entry, len(numeric))
		for i := range numeric {
			out[i] = numeric[i].entry
		}
		return out, lastUpdated, nil
	default:
		return nil, "", code.RemoteDecodeErr
	}
}

func (c *catalogImpl) InvalidateCache(ctx context.Context) {
	c.cache.Clear(ctx)
}

func (c *catalogImpl) OnCatalogNotify(ctx context.Context, msg string) error {
	logger.Infof(ctx, "catalog notify: %s", msg)
	c.cache.Clear(ctx)
	if c.wsClient == nil {
		return nil
	}
	return c.wsClient.Broadcast([]byte(msg))
}
