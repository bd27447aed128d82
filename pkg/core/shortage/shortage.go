// Package shortage manages shortage reports in the RemoteStore. A report
// names its drug as free text and is never checked against the drug
// collection.
package shortage

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/common/uuid"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/dwalast/drugguide/pkg/utils"
)

type Manager struct {
	remote repo.RemoteStore
	now    func() time.Time
}

func New(remote repo.RemoteStore) *Manager {
	return &Manager{remote: remote, now: time.Now}
}

func itemPath(id string) string {
	return constant.ShortagesPath + "/" + id
}

// AddShortage posts a new report and returns its key.
func (m *Manager) AddShortage(ctx context.Context, drugName, reason string,
	status model.ShortageStatus, reportedBy string) (string, error) {
	if !status.Valid() {
		return "", code.InvalidShortageStatus.WithMsg(string(status))
	}
	now := utils.ISOTime(m.now())
	key, err := m.remote.Post(ctx, constant.ShortagesPath, &model.Shortage{
		DrugID:         uuid.NewString(),
		DrugName:       drugName,
		Reason:         reason,
		Status:         status,
		ReportDate:     now,
		LastUpdateDate: now,
		ReportedBy:     reportedBy,
	})
	if err != nil {
		logger.Errorf(ctx, "AddShortage err: %+v", err)
		return "", err
	}
	return key, nil
}

func (m *Manager) GetShortages(ctx context.Context) ([]model.Shortage, error) {
	var raw json.RawMessage
	if err := m.remote.Get(ctx, constant.ShortagesPath, nil, &raw); err != nil {
		logger.Errorf(ctx, "GetShortages err: %+v", err)
		return nil, err
	}
	list, err := Decode(raw)
	if err != nil {
		logger.Errorf(ctx, "GetShortages decode err: %+v", err)
		return nil, code.RemoteDecodeErr.WithErr(err)
	}
	return list, nil
}

// UpdateShortage patches the given fields and always refreshes lastUpdateDate.
func (m *Manager) UpdateShortage(ctx context.Context, id string, update *model.ShortageUpdate) error {
	if update.Status != nil && !update.Status.Valid() {
		return code.InvalidShortageStatus.WithMsg(string(*update.Status))
	}
	patch := *update
	patch.LastUpdateDate = utils.ISOTime(m.now())
	if err := m.remote.Patch(ctx, itemPath(id), &patch); err != nil {
		logger.Errorf(ctx, "UpdateShortage id: %s err: %+v", id, err)
		return err
	}
	return nil
}

func (m *Manager) DeleteShortage(ctx context.Context, id string) error {
	if err := m.remote.Delete(ctx, itemPath(id)); err != nil {
		logger.Errorf(ctx, "DeleteShortage id: %s err: %+v", id, err)
		return err
	}
	return nil
}

// CriticalCount fetches all reports and counts the critical ones.
func (m *Manager) CriticalCount(ctx context.Context) (int, error) {
	list, err := m.GetShortages(ctx)
	if err != nil {
		return 0, err
	}
	return CountCritical(list), nil
}

func CountCritical(list []model.Shortage) int {
	n := 0
	for _, s := range list {
		if s.Status == model.ShortageCritical {
			n++
		}
	}
	return n
}

// Decode flattens a shortages node, keyed object or array, into a list
// carrying each key as id. Keys come back in ascending order.
func Decode(raw json.RawMessage) ([]model.Shortage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []model.Shortage{}, nil
	}

	if raw[0] == '[' {
		var items []*model.Shortage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		out := make([]model.Shortage, 0, len(items))
		for i, s := range items {
			if s == nil {
				continue
			}
			s.ID = strconv.Itoa(i)
			out = append(out, *s)
		}
		return out, nil
	}

	var items map[string]*model.Shortage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.Shortage, 0, len(items))
	for _, k := range keys {
		if items[k] == nil {
			continue
		}
		s := *items[k]
		s.ID = k
		out = append(out, s)
	}
	return out, nil
}
