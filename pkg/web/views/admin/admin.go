// Package admin serves the dashboard: login, file import and export, local
// mirror maintenance and commands.
package admin

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/common"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/command"
	"github.com/dwalast/drugguide/pkg/core/importer"
	"github.com/dwalast/drugguide/pkg/core/mirror"
	"github.com/dwalast/drugguide/pkg/core/session"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/utils"
	"github.com/gin-gonic/gin"
)

// maxUploadSize bounds uploaded import and backup files.
const maxUploadSize = 32 << 20

type Handle struct {
	session  *session.Session
	importer importer.Service
	mirror   *mirror.Mirror
	command  *command.Executor
}

func NewAdminHandle(s *app.Services) *Handle {
	return &Handle{
		session:  s.Session,
		importer: s.Importer,
		mirror:   s.Mirror,
		command:  s.Command,
	}
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handle) Login(ctx *gin.Context) {
	req := &loginReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	token, err := h.session.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warnf(ctx, "admin login failed for %s err: %+v", req.Email, err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx, token)
}

func (h *Handle) Logout(ctx *gin.Context) {
	h.session.Logout(ctx.Request.Context())
	common.ReplyOk(ctx)
}

// upload reads the "file" form field.
func upload(ctx *gin.Context) (string, []byte, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	if header.Size > maxUploadSize {
		return "", nil, fmt.Errorf("file too large: %d bytes", header.Size)
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	return header.Filename, content, err
}

// Import ingests an uploaded json or csv drug file.
func (h *Handle) Import(ctx *gin.Context) {
	req := &importer.ImportReq{}
	if err := ctx.ShouldBind(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.Mode = utils.Or(req.Mode, importer.ModeReplace)
	if !req.Mode.Valid() {
		common.ReplyErr(ctx, code.ParamErr, fmt.Sprintf("unknown mode: %s", req.Mode))
		return
	}
	name, content, err := upload(ctx)
	if err != nil {
		logger.Errorf(ctx, "read import file err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.ReplyOk(ctx, h.importer.ImportFile(ctx.Request.Context(), name, content, req.Mode))
}

func (h *Handle) ImportRemote(ctx *gin.Context) {
	common.ReplyOk(ctx, h.importer.ImportFromRemote(ctx.Request.Context()))
}

// ImportBackup restores a mirror export into the mirror and the RemoteStore.
func (h *Handle) ImportBackup(ctx *gin.Context) {
	_, content, err := upload(ctx)
	if err != nil {
		logger.Errorf(ctx, "read backup file err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.ReplyOk(ctx, h.importer.ImportBackupToMirror(ctx.Request.Context(), content))
}

func (h *Handle) Export(ctx *gin.Context) {
	raw, err := h.importer.ExportToFile(ctx.Request.Context())
	if err != nil {
		logger.Errorf(ctx, "ExportToFile err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	attachment(ctx, "drugs-export", raw)
}

func attachment(ctx *gin.Context, prefix string, raw []byte) {
	name := fmt.Sprintf("%s-%s.json", prefix, time.Now().Format(time.DateOnly))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// MirrorImport replaces the local mirror with the request body.
func (h *Handle) MirrorImport(ctx *gin.Context) {
	raw, err := ctx.GetRawData()
	if err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	if !h.mirror.ImportData(ctx.Request.Context(), raw) {
		common.ReplyErr(ctx, code.MirrorFormatErr)
		return
	}
	common.ReplyOk(ctx)
}

func (h *Handle) MirrorExport(ctx *gin.Context) {
	exp, ok := h.mirror.ExportData(ctx.Request.Context())
	if !ok {
		common.ReplyErr(ctx, code.MirrorEmpty)
		return
	}
	common.ReplyOk(ctx, exp)
}

func (h *Handle) MirrorStats(ctx *gin.Context) {
	stats, ok := h.mirror.GetStats(ctx.Request.Context())
	if !ok {
		common.ReplyErr(ctx, code.MirrorEmpty)
		return
	}
	common.ReplyOk(ctx, stats)
}

func (h *Handle) MirrorClear(ctx *gin.Context) {
	if !h.mirror.ClearAllData(ctx.Request.Context()) {
		common.ReplyErr(ctx, code.StorageErr)
		return
	}
	common.ReplyOk(ctx)
}

type commandReq struct {
	Name string `uri:"name" binding:"required"`
}

// Command runs a dashboard command. Unknown names and failed runs are
// reported in the result, not as request errors.
func (h *Handle) Command(ctx *gin.Context) {
	req := &commandReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	common.ReplyOk(ctx, h.command.Execute(ctx.Request.Context(), req.Name))
}

func (h *Handle) Backup(ctx *gin.Context) {
	backup, err := h.command.FullBackup(ctx.Request.Context())
	if err != nil {
		logger.Errorf(ctx, "FullBackup err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx, backup)
}
