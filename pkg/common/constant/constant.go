package constant

import "time"

// Local storage keys. Each concern owns exactly one key.
const (
	CacheKey     = "drugs_cache"
	MirrorKey    = "local_drugs_data"
	DeviceIDKey  = "drug_app_device_id"
	AuthKey      = "admin_auth"
	FavoritesKey = "favorite_drugs"
	ErrorsKey    = "app_errors"
)

const (
	CacheTTL        = 5 * time.Minute
	AuthTTL         = 24 * time.Hour
	MirrorVersion   = "1.0.0"
	MaxErrorReports = 10
	MaxImportErrors = 10
	ImportedBy      = "admin"
	ItemsPerPage    = 16
)

const (
	FetchTimeout    = 15 * time.Second
	FetchMaxRetries = 2
	FetchRetryStep  = 3 * time.Second
)

const MaxMessageSize = 1 << 20

// RemoteStore paths, relative to the database root. The ".json" suffix is
// appended by the client.
const (
	DrugsPath          = "drugs"
	ShortagesPath      = "shortages"
	WebsiteRatingsPath = "website_ratings"
	PagesPath          = "pages"
	RatingsSegment     = "ratings"
)
