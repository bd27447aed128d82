package catalog

import (
	"context"
)

type Service interface {
	// FetchDrugsAndShortages serves the drug list from the read cache unless
	// forceRefresh is set, otherwise loads it from the RemoteStore with a
	// bounded retry.
	FetchDrugsAndShortages(ctx context.Context, forceRefresh bool) (*FetchResult, error)
	InvalidateCache(ctx context.Context)
	OnCatalogNotify(ctx context.Context, msg string) error
}

// NetworkStatus reports whether the process believes it can reach the
// network. Retries are skipped while offline.
type NetworkStatus interface {
	Online(ctx context.Context) bool
}

type AlwaysOnline struct{}

func (AlwaysOnline) Online(context.Context) bool {
	return true
}
