package rating

import "github.com/dwalast/drugguide/pkg/repo/model"

type RatedResp struct {
	Rated bool `json:"rated"`
}

type AddResp struct {
	ID string `json:"id"`
}

type AdminRatingPath struct {
	Kind     model.RatingKind `uri:"kind" binding:"required"`
	ItemID   string           `form:"item_id"`
	RatingID string           `uri:"rating_id" binding:"required"`
}
