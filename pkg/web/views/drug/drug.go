package drug

import (
	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/common"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/catalog"
	"github.com/dwalast/drugguide/pkg/core/importer"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/gin-gonic/gin"
)

type Handle struct {
	catalog  catalog.Service
	importer importer.Service
}

func NewDrugHandle(s *app.Services) *Handle {
	return &Handle{
		catalog:  s.Catalog,
		importer: s.Importer,
	}
}

type idReq struct {
	ID string `uri:"id" binding:"required"`
}

// List serves the filtered, sorted and paged drug list.
func (h *Handle) List(ctx *gin.Context) {
	req := &catalog.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse List param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	res, err := h.catalog.FetchDrugsAndShortages(ctx.Request.Context(), req.Refresh)
	if err != nil {
		logger.Errorf(ctx, "FetchDrugsAndShortages err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}

	found := catalog.Search(res.Drugs, req.Query, req.Sort)
	page, pages := catalog.Paginate(found, req.Page, req.Size)
	common.ReplyOk(ctx, &catalog.ListResp{
		Drugs:             page,
		Total:             len(found),
		Pages:             pages,
		LastUpdated:       res.LastUpdated,
		CriticalShortages: res.CriticalShortages,
		FromCache:         res.FromCache,
	})
}

func (h *Handle) Create(ctx *gin.Context) {
	req := model.RawRecord{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Errorf(ctx, "parse Create drug param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	id, err := h.importer.AddDrug(ctx.Request.Context(), req)
	common.Reply(ctx, err, &idResp{ID: id})
}

type idResp struct {
	ID string `json:"id"`
}

func (h *Handle) Update(ctx *gin.Context) {
	path := &idReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := model.RawRecord{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Errorf(ctx, "parse Update drug param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.Reply(ctx, h.importer.UpdateDrugInfo(ctx.Request.Context(), path.ID, req))
}

func (h *Handle) Delete(ctx *gin.Context) {
	path := &idReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.Reply(ctx, h.importer.DeleteDrug(ctx.Request.Context(), path.ID))
}

// InvalidateCache drops the read cache of this process.
func (h *Handle) InvalidateCache(ctx *gin.Context) {
	h.catalog.InvalidateCache(ctx.Request.Context())
	common.ReplyOk(ctx)
}
