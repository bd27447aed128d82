// Package user holds the per-installation endpoints: favorites and client
// error reports.
package user

import (
	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/common"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/errreport"
	"github.com/dwalast/drugguide/pkg/core/favorites"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/utils"
	"github.com/gin-gonic/gin"
)

type Handle struct {
	favorites *favorites.Store
	errors    *errreport.Recorder
}

func NewUserHandle(s *app.Services) *Handle {
	return &Handle{
		favorites: s.Favorites,
		errors:    s.Errors,
	}
}

type idReq struct {
	ID string `uri:"id" binding:"required"`
}

type toggleResp struct {
	Favorite bool `json:"favorite"`
}

func (h *Handle) Favorites(ctx *gin.Context) {
	common.ReplyOk(ctx, h.favorites.List(ctx.Request.Context()))
}

func (h *Handle) ToggleFavorite(ctx *gin.Context) {
	path := &idReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	fav, err := h.favorites.Toggle(ctx.Request.Context(), path.ID)
	common.Reply(ctx, err, &toggleResp{Favorite: fav})
}

func (h *Handle) ReportError(ctx *gin.Context) {
	req := &errreport.Report{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse ReportError param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.UserAgent = utils.Or(req.UserAgent, ctx.Request.UserAgent())
	common.Reply(ctx, h.errors.Record(ctx.Request.Context(), *req))
}

func (h *Handle) Errors(ctx *gin.Context) {
	common.ReplyOk(ctx, h.errors.List(ctx.Request.Context()))
}

func (h *Handle) ClearErrors(ctx *gin.Context) {
	common.Reply(ctx, h.errors.Clear(ctx.Request.Context()))
}
