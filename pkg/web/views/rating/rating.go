package rating

import (
	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/common"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/rating"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/gin-gonic/gin"
)

// DeviceHeader lets a client carry its own device id instead of the one
// kept by the server.
const DeviceHeader = "X-Device-ID"

type Handle struct {
	rService rating.Service
}

func NewRatingHandle(s *app.Services) *Handle {
	return &Handle{rService: s.Rating}
}

// Device pins the device id of the request when the client sends one.
func Device() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if id := ctx.GetHeader(DeviceHeader); id != "" {
			ctx.Request = ctx.Request.WithContext(rating.WithDeviceID(ctx.Request.Context(), id))
		}
		ctx.Next()
	}
}

type drugReq struct {
	DrugID string `uri:"id" binding:"required"`
}

func (h *Handle) DrugRatings(ctx *gin.Context) {
	path := &drugReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.rService.GetProductRatings(ctx.Request.Context(), path.DrugID)
	common.Reply(ctx, err, resp)
}

func (h *Handle) AddDrugRating(ctx *gin.Context) {
	path := &drugReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &model.RatingInput{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse AddDrugRating param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	id, err := h.rService.AddProductRating(ctx.Request.Context(), path.DrugID, req)
	common.Reply(ctx, err, &rating.AddResp{ID: id})
}

func (h *Handle) DrugRated(ctx *gin.Context) {
	path := &drugReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.ReplyOk(ctx, &rating.RatedResp{
		Rated: h.rService.HasUserRated(ctx.Request.Context(), path.DrugID, model.RatingDrug),
	})
}

func (h *Handle) WebsiteRatings(ctx *gin.Context) {
	resp, err := h.rService.GetWebsiteRatings(ctx.Request.Context())
	common.Reply(ctx, err, resp)
}

func (h *Handle) AddWebsiteRating(ctx *gin.Context) {
	req := &model.RatingInput{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse AddWebsiteRating param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	id, err := h.rService.AddWebsiteRating(ctx.Request.Context(), req)
	common.Reply(ctx, err, &rating.AddResp{ID: id})
}

func (h *Handle) WebsiteRated(ctx *gin.Context) {
	common.ReplyOk(ctx, &rating.RatedResp{
		Rated: h.rService.HasUserRated(ctx.Request.Context(), "", model.RatingWebsite),
	})
}

// AdminList returns every drug rating across the catalog.
func (h *Handle) AdminList(ctx *gin.Context) {
	resp, err := h.rService.GetAllProductRatingsForAdmin(ctx.Request.Context())
	common.Reply(ctx, err, resp)
}

func (h *Handle) AdminUpdate(ctx *gin.Context) {
	path := &rating.AdminRatingPath{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	if err := ctx.ShouldBindQuery(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &model.RatingUpdate{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse AdminUpdate rating param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	err := h.rService.UpdateRating(ctx.Request.Context(), path.Kind, path.ItemID, path.RatingID, req)
	common.Reply(ctx, err)
}

func (h *Handle) AdminDelete(ctx *gin.Context) {
	path := &rating.AdminRatingPath{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	if err := ctx.ShouldBindQuery(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.Reply(ctx, h.rService.DeleteRating(ctx.Request.Context(), path.Kind, path.ItemID, path.RatingID))
}
