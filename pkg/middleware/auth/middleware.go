package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dwalast/drugguide/pkg/common"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/session"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/utils"
	"github.com/gin-gonic/gin"
)

const USERKEY = "AUTH_USER_KEY"

type AuthType string

const AuthTypeBearer AuthType = "Bearer"

// AuthFunc resolves the token part of an Authorization header to claims.
type AuthFunc func(ctx *gin.Context, token string) *session.Claims

// AuthAdmin accepts admin tokens issued by the session login.
func AuthAdmin(s *session.Session) func(ctx *gin.Context) {
	return Auth(map[AuthType]AuthFunc{
		AuthTypeBearer: getAdmin(s),
	})
}

func Auth(authFuncMap map[AuthType]AuthFunc) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		cookie, _ := ctx.Cookie("access_token")
		authHeader := ctx.GetHeader("Authorization")
		authHeader = utils.Or(cookie, authHeader)
		if authHeader == "" {
			abort(ctx, code.UnLogin)
			return
		}
		tokens := strings.Split(authHeader, " ")
		if len(tokens) != 2 {
			abort(ctx, code.LoginFormatErr)
			return
		}
		var claims *session.Claims
		if f, ok := authFuncMap[AuthType(tokens[0])]; ok {
			claims = f(ctx, tokens[1])
		}
		if claims == nil {
			abort(ctx, code.InvalidToken)
			return
		}
		ctx.Set(USERKEY, claims)
		ctx.Next()
	}
}

func abort(ctx *gin.Context, c code.ErrCode) {
	ctx.JSON(http.StatusUnauthorized, &common.Resp{
		Code:  c,
		Error: &common.Error{Msg: c.String()},
	})
	ctx.Abort()
}

func getAdmin(s *session.Session) AuthFunc {
	return func(ctx *gin.Context, token string) *session.Claims {
		claims, err := s.Verify(token)
		if err != nil {
			logger.Warnf(ctx, "admin token validation failed: %v", err)
			return nil
		}
		return claims
	}
}

func GetCurrentAdmin(ctx context.Context) *session.Claims {
	gCtx, ok := ctx.(*gin.Context)
	if !ok {
		return nil
	}
	v, exists := gCtx.Get(USERKEY)
	if !exists {
		return nil
	}
	claims, _ := v.(*session.Claims)
	return claims
}
