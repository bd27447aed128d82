package notify

import (
	"context"

	"github.com/dwalast/drugguide/pkg/common/uuid"
)

type Action string

const (
	// CatalogInvalidate is sent after any write to the drug collection.
	CatalogInvalidate Action = "catalog-invalidate"
)

type SendMsg struct {
	Channel   Action    `json:"action"`
	Reason    string    `json:"reason"`
	Data      any       `json:"data,omitempty"`
	UUID      uuid.UUID `json:"uuid"`
	Timestamp int64     `json:"timestamp"`
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}
