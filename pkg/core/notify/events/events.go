package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dwalast/drugguide/internal/config"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/uuid"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/middleware/redis"
	"github.com/dwalast/drugguide/pkg/utils"
	r "github.com/redis/go-redis/v9"
)

// redis pub/sub fan-out so every api process drops its read cache together

var (
	once   sync.Once
	center *Events
)

type Events struct {
	actions sync.Map
	subs    sync.Map
	client  *r.Client
	wait    sync.WaitGroup
}

// New picks redis pub/sub when it is enabled and the in-process center
// otherwise.
func New() notify.MsgCenter {
	if config.Global().Redis.Enabled && redis.GetClient() != nil {
		return NewEvents()
	}
	return NewLocal()
}

func NewEvents() notify.MsgCenter {
	once.Do(func() {
		center = &Events{
			client: redis.GetClient(),
		}
	})

	return center
}

func (e *Events) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, ok := e.actions.LoadOrStore(msgName, handleFunc); ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}

	sub := e.client.Subscribe(ctx, string(msgName))
	e.subs.Store(msgName, sub)

	e.wait.Add(1)
	utils.SafelyGo(func() {
		defer e.wait.Done()

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					logger.Infof(ctx, "exit redis channel name: %s", string(msgName))
					e.actions.Delete(msgName)
					return
				}
				if msg == nil {
					continue
				}
				if err := handleFunc(ctx, msg.Payload); err != nil {
					logger.Errorf(ctx, "handle redis msg fail name: %s, err: %+v", msgName, err)
				}
			case <-ctx.Done():
				logger.Infof(ctx, "exit redis channel name: %s", string(msgName))
				if err := sub.Close(); err != nil {
					logger.Errorf(ctx, "close subscription fail msg name: %s, err: %+v", msgName, err)
				}
				e.actions.Delete(msgName)
				return
			}
		}
	}, func(err error) {
		logger.Errorf(ctx, "Registry handle msg err: %+v", err)
	})
	return nil
}

func (e *Events) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	stamp(msg)
	data, _ := json.Marshal(msg)
	if err := e.client.Publish(ctx, string(msg.Channel), data).Err(); err != nil {
		logger.Errorf(ctx, "send msg fail action: %s, err: %+v", msg.Channel, err)
		return code.NotifySendMsgErr.WithErr(err)
	}
	return nil
}

// Close ends every subscription and waits for the readers to exit.
func (e *Events) Close(ctx context.Context) error {
	e.subs.Range(func(key, value any) bool {
		if sub, ok := value.(*r.PubSub); ok {
			if err := sub.Close(); err != nil {
				logger.Warnf(ctx, "close subscription %v err: %+v", key, err)
			}
		}
		e.subs.Delete(key)
		return true
	})
	e.wait.Wait()
	return nil
}

func stamp(msg *notify.SendMsg) {
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}
}
