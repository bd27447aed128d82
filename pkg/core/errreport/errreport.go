// Package errreport keeps the most recent client error reports for
// debugging. Older reports are dropped.
package errreport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/utils"
)

type Report struct {
	Message        string `json:"message" binding:"required"`
	Stack          string `json:"stack,omitempty"`
	ComponentStack string `json:"componentStack,omitempty"`
	Timestamp      string `json:"timestamp"`
	UserAgent      string `json:"userAgent,omitempty"`
	URL            string `json:"url,omitempty"`
}

type Recorder struct {
	mu    sync.Mutex
	kv    repo.KV
	limit int
	now   func() time.Time
}

func New(kv repo.KV) *Recorder {
	return &Recorder{kv: kv, limit: constant.MaxErrorReports, now: time.Now}
}

func (r *Recorder) List(ctx context.Context) []Report {
	raw, err := r.kv.Get(ctx, constant.ErrorsKey)
	if err != nil {
		if !errors.Is(err, code.RecordNotFound) {
			logger.Warnf(ctx, "load error reports err: %+v", err)
		}
		return []Report{}
	}
	out := make([]Report, 0)
	if err := json.Unmarshal(raw, &out); err != nil {
		return []Report{}
	}
	return out
}

// Record appends rep, stamping the time when missing, and keeps the newest
// reports only.
func (r *Recorder) Record(ctx context.Context, rep Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep.Timestamp = utils.Or(rep.Timestamp, utils.ISOTime(r.now()))
	list := append(r.List(ctx), rep)
	if len(list) > r.limit {
		list = list[len(list)-r.limit:]
	}
	raw, _ := json.Marshal(list)
	if err := r.kv.Set(ctx, constant.ErrorsKey, raw); err != nil {
		logger.Errorf(ctx, "save error report err: %+v", err)
		return err
	}
	return nil
}

func (r *Recorder) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kv.Delete(ctx, constant.ErrorsKey)
}
