package common

import (
	"net/http"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/gin-gonic/gin"
)

type Error struct {
	Msg  string   `json:"msg"`
	Info []string `json:"info,omitempty"`
}

type Resp struct {
	Code  code.ErrCode `json:"code"`
	Data  any          `json:"data,omitempty"`
	Error *Error       `json:"error,omitempty"`
}

type RespT[T any] struct {
	Code  code.ErrCode `json:"code"`
	Data  T            `json:"data"`
	Error *Error       `json:"error,omitempty"`
}

func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	ReplyOk(ctx, data...)
}

func ReplyOk(ctx *gin.Context, data ...any) {
	resp := &Resp{Code: code.Success}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

func ReplyErr(ctx *gin.Context, err error, info ...string) {
	resp := &Resp{
		Code:  code.CodeOf(err),
		Error: &Error{Msg: code.Message(err), Info: info},
	}
	ctx.JSON(httpStatus(resp.Code), resp)
}

func httpStatus(c code.ErrCode) int {
	switch c {
	case code.ParamErr, code.RatingOutOfRange, code.InvalidRatingKind,
		code.InvalidShortageStatus, code.ImportFormatErr, code.MirrorFormatErr,
		code.UnknownCommand, code.UnknownPage:
		return http.StatusBadRequest
	case code.UnLogin, code.LoginFormatErr, code.InvalidToken, code.LoginFailed:
		return http.StatusUnauthorized
	case code.RecordNotFound, code.MirrorEmpty, code.RemoteNotFound:
		return http.StatusNotFound
	case code.RPCHttpErr, code.RPCHttpCodeErr, code.RemoteServerErr,
		code.RemoteTimeout, code.Offline, code.RemoteDecodeErr, code.NoValidDrugs,
		code.LoadFailed, code.FetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
