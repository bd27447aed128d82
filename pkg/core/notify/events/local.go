package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/utils"
)

// Local dispatches messages to handlers registered in the same process. It
// is used when no redis is configured.
type Local struct {
	actions *haxmap.Map[notify.Action, notify.HandleFunc]
	wait    sync.WaitGroup
}

func NewLocal() *Local {
	return &Local{actions: haxmap.New[notify.Action, notify.HandleFunc]()}
}

func (l *Local) Registry(_ context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, loaded := l.actions.GetOrSet(msgName, handleFunc); loaded {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}
	return nil
}

func (l *Local) Broadcast(_ context.Context, msg *notify.SendMsg) error {
	stamp(msg)
	handleFunc, ok := l.actions.Get(msg.Channel)
	if !ok {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}

	// The handler outlives the caller, whose ctx may be a pooled request.
	hctx := context.Background()
	l.wait.Add(1)
	utils.SafelyGo(func() {
		defer l.wait.Done()
		if err := handleFunc(hctx, string(data)); err != nil {
			logger.Errorf(hctx, "handle local msg fail name: %s, err: %+v", msg.Channel, err)
		}
	}, func(err error) {
		logger.Errorf(hctx, "local handle msg panic: %+v", err)
	})
	return nil
}

// Close waits for in-flight handlers.
func (l *Local) Close(_ context.Context) error {
	l.wait.Wait()
	return nil
}
