package rating

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/common/uuid"
	"github.com/dwalast/drugguide/pkg/core/rating"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/dwalast/drugguide/pkg/utils"
)

type ratingImpl struct {
	remote repo.RemoteStore
	kv     repo.KV
	now    func() time.Time
	mu     sync.Mutex
}

func NewRating(remote repo.RemoteStore, kv repo.KV) rating.Service {
	return &ratingImpl{remote: remote, kv: kv, now: time.Now}
}

func collectionPath(kind model.RatingKind, itemID string) (string, error) {
	switch kind {
	case model.RatingDrug:
		if itemID == "" {
			return "", code.ParamErr.WithMsg("drug id required")
		}
		return constant.DrugsPath + "/" + itemID + "/" + constant.RatingsSegment, nil
	case model.RatingWebsite:
		return constant.WebsiteRatingsPath, nil
	default:
		return "", code.InvalidRatingKind.WithMsg(string(kind))
	}
}

// DeviceID returns the id pinned on ctx, else the persisted one, creating
// it on first use.
func (r *ratingImpl) DeviceID(ctx context.Context) (string, error) {
	if id, ok := rating.DeviceIDFrom(ctx); ok {
		return id, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	raw, err := r.kv.Get(ctx, constant.DeviceIDKey)
	if err == nil && len(raw) > 0 {
		return string(raw), nil
	}
	if err != nil && !errors.Is(err, code.RecordNotFound) {
		logger.Errorf(ctx, "load device id err: %+v", err)
		return "", err
	}

	id := uuid.NewString()
	if err := r.kv.Set(ctx, constant.DeviceIDKey, []byte(id)); err != nil {
		logger.Errorf(ctx, "save device id err: %+v", err)
		return "", err
	}
	return id, nil
}

func (r *ratingImpl) HasUserRated(ctx context.Context, itemID string, kind model.RatingKind) bool {
	path, err := collectionPath(kind, itemID)
	if err != nil {
		return false
	}
	deviceID, err := r.DeviceID(ctx)
	if err != nil {
		return false
	}

	var found map[string]json.RawMessage
	if err := r.remote.Get(ctx, path, &repo.Query{OrderBy: "deviceId", EqualTo: deviceID}, &found); err != nil {
		logger.Warnf(ctx, "check existing rating err: %+v", err)
		return false
	}
	return len(found) > 0
}

func (r *ratingImpl) add(ctx context.Context, kind model.RatingKind, itemID string, in *model.RatingInput) (string, error) {
	if in.Rating < rating.MinValue || in.Rating > rating.MaxValue {
		return "", code.RatingOutOfRange
	}
	path, err := collectionPath(kind, itemID)
	if err != nil {
		return "", err
	}
	deviceID, err := r.DeviceID(ctx)
	if err != nil {
		return "", err
	}

	key, err := r.remote.Post(ctx, path, &model.Rating{
		RatingInput: *in,
		Timestamp:   utils.ISOTime(r.now()),
		DeviceID:    deviceID,
		IsVerified:  false,
	})
	if err != nil {
		logger.Errorf(ctx, "add %s rating err: %+v", kind, err)
		return "", err
	}
	return key, nil
}

func (r *ratingImpl) AddProductRating(ctx context.Context, drugID string, in *model.RatingInput) (string, error) {
	return r.add(ctx, model.RatingDrug, drugID, in)
}

func (r *ratingImpl) AddWebsiteRating(ctx context.Context, in *model.RatingInput) (string, error) {
	return r.add(ctx, model.RatingWebsite, "", in)
}

func (r *ratingImpl) list(ctx context.Context, kind model.RatingKind, itemID string) ([]model.Rating, error) {
	path, err := collectionPath(kind, itemID)
	if err != nil {
		return nil, err
	}
	var raw map[string]*model.Rating
	if err := r.remote.Get(ctx, path, nil, &raw); err != nil {
		logger.Errorf(ctx, "get %s ratings err: %+v", kind, err)
		return nil, err
	}
	drugID := ""
	if kind == model.RatingDrug {
		drugID = itemID
	}
	return flatten(raw, drugID), nil
}

func flatten(raw map[string]*model.Rating, drugID string) []model.Rating {
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]model.Rating, 0, len(keys))
	for _, k := range keys {
		item := *raw[k]
		item.ID = k
		if drugID != "" {
			item.DrugID = drugID
		}
		out = append(out, item)
	}
	return out
}

func (r *ratingImpl) GetProductRatings(ctx context.Context, drugID string) ([]model.Rating, error) {
	return r.list(ctx, model.RatingDrug, drugID)
}

func (r *ratingImpl) GetWebsiteRatings(ctx context.Context) ([]model.Rating, error) {
	return r.list(ctx, model.RatingWebsite, "")
}

// GetAllProductRatingsForAdmin walks every drug node and collects its
// nested ratings.
func (r *ratingImpl) GetAllProductRatingsForAdmin(ctx context.Context) ([]model.Rating, error) {
	var raw json.RawMessage
	if err := r.remote.Get(ctx, constant.DrugsPath, nil, &raw); err != nil {
		logger.Errorf(ctx, "get all product ratings err: %+v", err)
		return nil, err
	}
	drugs, err := drugNodes(raw)
	if err != nil {
		logger.Errorf(ctx, "decode drugs for ratings err: %+v", err)
		return nil, code.RemoteDecodeErr.WithErr(err)
	}

	ids := make([]string, 0, len(drugs))
	for id := range drugs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]model.Rating, 0)
	for _, id := range ids {
		node := &struct {
			Ratings map[string]*model.Rating `json:"ratings"`
		}{}
		if err := json.Unmarshal(drugs[id], node); err != nil {
			continue
		}
		out = append(out, flatten(node.Ratings, id)...)
	}
	return out, nil
}

// drugNodes splits the drugs node by key. Dense integer keys come back from
// the store as an array.
func drugNodes(raw json.RawMessage) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]json.RawMessage{}, nil
	}
	if raw[0] != '[' {
		var nodes map[string]json.RawMessage
		err := json.Unmarshal(raw, &nodes)
		return nodes, err
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	nodes := make(map[string]json.RawMessage, len(list))
	for i, n := range list {
		nodes[strconv.Itoa(i)] = n
	}
	return nodes, nil
}

func (r *ratingImpl) UpdateRating(ctx context.Context, kind model.RatingKind, itemID, ratingID string, update *model.RatingUpdate) error {
	if update.Rating != nil && (*update.Rating < rating.MinValue || *update.Rating > rating.MaxValue) {
		return code.RatingOutOfRange
	}
	path, err := collectionPath(kind, itemID)
	if err != nil {
		return err
	}
	if err := r.remote.Patch(ctx, path+"/"+ratingID, update); err != nil {
		logger.Errorf(ctx, "update %s rating %s err: %+v", kind, ratingID, err)
		return err
	}
	return nil
}

func (r *ratingImpl) DeleteRating(ctx context.Context, kind model.RatingKind, itemID, ratingID string) error {
	path, err := collectionPath(kind, itemID)
	if err != nil {
		return err
	}
	if err := r.remote.Delete(ctx, path+"/"+ratingID); err != nil {
		logger.Errorf(ctx, "delete %s rating %s err: %+v", kind, ratingID, err)
		return err
	}
	return nil
}
