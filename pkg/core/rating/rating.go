package rating

import (
	"context"

	"github.com/dwalast/drugguide/pkg/repo/model"
)

// Service lets one device rate a drug or the website at most once. The
// device is identified by a locally persisted random id, not a user.
type Service interface {
	DeviceID(ctx context.Context) (string, error)
	// HasUserRated fails open: any remote or decode failure reports false.
	HasUserRated(ctx context.Context, itemID string, kind model.RatingKind) bool
	AddProductRating(ctx context.Context, drugID string, in *model.RatingInput) (string, error)
	AddWebsiteRating(ctx context.Context, in *model.RatingInput) (string, error)
	GetProductRatings(ctx context.Context, drugID string) ([]model.Rating, error)
	GetWebsiteRatings(ctx context.Context) ([]model.Rating, error)
	GetAllProductRatingsForAdmin(ctx context.Context) ([]model.Rating, error)
	UpdateRating(ctx context.Context, kind model.RatingKind, itemID, ratingID string, update *model.RatingUpdate) error
	DeleteRating(ctx context.Context, kind model.RatingKind, itemID, ratingID string) error
}

type deviceKey struct{}

// WithDeviceID pins the device id for calls made with the returned context,
// for callers that carry their own id such as HTTP clients.
func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey{}, id)
}

func DeviceIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceKey{}).(string)
	return id, ok && id != ""
}

const (
	MinValue = 1
	MaxValue = 5
)
