package shortage

import (
	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/common"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/shortage"
	"github.com/dwalast/drugguide/pkg/middleware/auth"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/gin-gonic/gin"
)

type Handle struct {
	manager *shortage.Manager
}

func NewShortageHandle(s *app.Services) *Handle {
	return &Handle{manager: s.Shortage}
}

type addReq struct {
	DrugName string               `json:"drugName" binding:"required"`
	Reason   string               `json:"reason"`
	Status   model.ShortageStatus `json:"status" binding:"required"`
}

type idReq struct {
	ID string `uri:"id" binding:"required"`
}

type idResp struct {
	ID string `json:"id"`
}

func (h *Handle) List(ctx *gin.Context) {
	resp, err := h.manager.GetShortages(ctx.Request.Context())
	common.Reply(ctx, err, resp)
}

func (h *Handle) Add(ctx *gin.Context) {
	req := &addReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Add shortage param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	reportedBy := ""
	if admin := auth.GetCurrentAdmin(ctx); admin != nil {
		reportedBy = admin.Email
	}
	id, err := h.manager.AddShortage(ctx.Request.Context(), req.DrugName, req.Reason, req.Status, reportedBy)
	common.Reply(ctx, err, &idResp{ID: id})
}

func (h *Handle) Update(ctx *gin.Context) {
	path := &idReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &model.ShortageUpdate{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Update shortage param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.Reply(ctx, h.manager.UpdateShortage(ctx.Request.Context(), path.ID, req))
}

func (h *Handle) Delete(ctx *gin.Context) {
	path := &idReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.Reply(ctx, h.manager.DeleteShortage(ctx.Request.Context(), path.ID))
}
