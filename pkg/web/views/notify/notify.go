// Package notify streams catalog invalidation events to websocket clients.
package notify

import (
	"context"
	"errors"

	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/common/uuid"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
)

type Handle struct {
	wsClient *melody.Melody
}

// NewWSClient returns the melody instance the catalog broadcasts to.
func NewWSClient() *melody.Melody {
	wsClient := melody.New()
	wsClient.Config.MaxMessageSize = constant.MaxMessageSize
	return wsClient
}

func NewNotifyHandle(wsClient *melody.Melody) *Handle {
	h := &Handle{wsClient: wsClient}
	h.initCatalogWebSocket()
	return h
}

// Catalog upgrades the request; clients only receive.
func (h *Handle) Catalog(ctx *gin.Context) {
	if err := h.wsClient.HandleRequestWithKeys(ctx.Writer, ctx.Request, map[string]any{
		"ctx":        ctx,
		"session_id": uuid.NewString(),
	}); err != nil {
		logger.Errorf(ctx, "Catalog HandleRequestWithKeys err: %+v", err)
	}
}

// Close disconnects every subscriber.
func (h *Handle) Close() error {
	return h.wsClient.Close()
}

func (h *Handle) initCatalogWebSocket() {
	h.wsClient.HandleClose(func(s *melody.Session, _ int, _ string) error {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "catalog ws client close keys: %+v", s.Keys)
		}
		return nil
	})

	h.wsClient.HandleDisconnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "catalog ws client disconnected keys: %+v", s.Keys)
		}
	})

	h.wsClient.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseGoingAway {
			return
		}
		if ctx, ok := s.Get("ctx"); ok {
			logger.Errorf(ctx.(context.Context), "catalog ws error keys: %+v, err: %+v", s.Keys, err)
		}
	})

	h.wsClient.HandleConnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "catalog ws connect keys: %+v", s.Keys)
		}
	})

	h.wsClient.HandleMessage(func(s *melody.Session, _ []byte) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Debugf(ctx.(context.Context), "catalog ws ignores client message keys: %+v", s.Keys)
		}
	})

	h.wsClient.HandleSentMessage(func(_ *melody.Session, _ []byte) {})
	h.wsClient.HandleSentMessageBinary(func(_ *melody.Session, _ []byte) {})
}
