package page

import (
	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/common"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/pages"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/gin-gonic/gin"
)

type Handle struct {
	store *pages.Store
}

func NewPageHandle(s *app.Services) *Handle {
	return &Handle{store: s.Pages}
}

type nameReq struct {
	Name pages.Name `uri:"name" binding:"required"`
}

// pageResp carries the content even when the stored copy could not be read;
// Warning then holds the load failure shown next to the defaults.
type pageResp struct {
	Content pages.Content `json:"content"`
	Warning string        `json:"warning,omitempty"`
}

func (h *Handle) Get(ctx *gin.Context) {
	path := &nameReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	content, err := h.store.Get(ctx.Request.Context(), path.Name)
	if content == nil {
		common.ReplyErr(ctx, err)
		return
	}
	resp := &pageResp{Content: content}
	if err != nil {
		resp.Warning = code.Message(err)
	}
	common.ReplyOk(ctx, resp)
}

func (h *Handle) Save(ctx *gin.Context) {
	path := &nameReq{}
	if err := ctx.ShouldBindUri(path); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := pages.Content{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Errorf(ctx, "parse Save page param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.Reply(ctx, h.store.Save(ctx.Request.Context(), path.Name, req))
}
