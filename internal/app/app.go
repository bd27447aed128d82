// Package app wires the storage backends and core services shared by the
// api server, the grpc health server and the admin commands.
package app

import (
	"context"

	"github.com/dwalast/drugguide/internal/config"
	"github.com/dwalast/drugguide/pkg/core/cache"
	"github.com/dwalast/drugguide/pkg/core/catalog"
	catalogImpl "github.com/dwalast/drugguide/pkg/core/catalog/catalog"
	"github.com/dwalast/drugguide/pkg/core/command"
	"github.com/dwalast/drugguide/pkg/core/errreport"
	"github.com/dwalast/drugguide/pkg/core/favorites"
	"github.com/dwalast/drugguide/pkg/core/importer"
	importerImpl "github.com/dwalast/drugguide/pkg/core/importer/importer"
	"github.com/dwalast/drugguide/pkg/core/mirror"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/dwalast/drugguide/pkg/core/notify/events"
	"github.com/dwalast/drugguide/pkg/core/pages"
	"github.com/dwalast/drugguide/pkg/core/rating"
	ratingImpl "github.com/dwalast/drugguide/pkg/core/rating/rating"
	"github.com/dwalast/drugguide/pkg/core/session"
	"github.com/dwalast/drugguide/pkg/core/shortage"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/kv"
	"github.com/dwalast/drugguide/pkg/repo/remote"
	"github.com/olahol/melody"
)

type Services struct {
	KV        repo.KV
	Remote    repo.RemoteStore
	MsgCenter notify.MsgCenter
	WSClient  *melody.Melody

	Cache     *cache.Cache
	Mirror    *mirror.Mirror
	Catalog   catalog.Service
	Rating    rating.Service
	Shortage  *shortage.Manager
	Pages     *pages.Store
	Importer  importer.Service
	Command   *command.Executor
	Session   *session.Session
	Favorites *favorites.Store
	Errors    *errreport.Recorder
}

type Option func(*options)

type options struct {
	kv        repo.KV
	remote    repo.RemoteStore
	msgCenter notify.MsgCenter
	wsClient  *melody.Melody
}

// WithKV replaces the configured local storage backend.
func WithKV(store repo.KV) Option {
	return func(o *options) {
		o.kv = store
	}
}

func WithRemote(r repo.RemoteStore) Option {
	return func(o *options) {
		o.remote = r
	}
}

func WithMsgCenter(center notify.MsgCenter) Option {
	return func(o *options) {
		o.msgCenter = center
	}
}

// WithWSClient forwards catalog invalidations to websocket subscribers.
func WithWSClient(ws *melody.Melody) Option {
	return func(o *options) {
		o.wsClient = ws
	}
}

// New builds every service from config. Redis and postgres must already be
// initialized when the configured backends need them.
func New(ctx context.Context, opts ...Option) (*Services, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.kv == nil {
		store, err := kv.New(ctx)
		if err != nil {
			return nil, err
		}
		o.kv = store
	}
	if o.remote == nil {
		o.remote = remote.New()
	}
	if o.msgCenter == nil {
		o.msgCenter = events.New()
	}

	conf := config.Global()
	s := &Services{
		KV:        o.kv,
		Remote:    o.remote,
		MsgCenter: o.msgCenter,
		WSClient:  o.wsClient,
		Cache:     cache.New(o.kv, cache.WithTTL(conf.Cache.TTL)),
		Mirror:    mirror.New(o.kv),
		Rating:    ratingImpl.NewRating(o.remote, o.kv),
		Shortage:  shortage.New(o.remote),
		Pages:     pages.New(o.remote),
		Favorites: favorites.New(o.kv),
		Errors:    errreport.New(o.kv),
	}

	catalogOpts := []catalogImpl.Option{catalogImpl.WithMsgCenter(o.msgCenter)}
	if o.wsClient != nil {
		catalogOpts = append(catalogOpts, catalogImpl.WithWSClient(o.wsClient))
	}
	s.Catalog = catalogImpl.NewCatalog(ctx, o.remote, s.Cache, catalogOpts...)
	s.Importer = importerImpl.NewImporter(o.remote, s.Mirror,
		importerImpl.WithMsgCenter(o.msgCenter),
		importerImpl.WithCache(s.Cache),
		importerImpl.WithWorkers(conf.Import.Workers),
		importerImpl.WithImportedBy(conf.Import.ImportedBy),
	)
	s.Command = command.New(s.Mirror,
		command.WithPages(s.Pages),
		command.WithRatings(s.Rating),
	)
	s.Session = session.New(o.kv)
	return s, nil
}

// Close releases the message center subscriptions.
func (s *Services) Close(ctx context.Context) error {
	return s.MsgCenter.Close(ctx)
}
