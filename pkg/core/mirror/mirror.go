// Package mirror keeps a long-lived local copy of drugs and shortages used
// for export, import and backup tooling. Unlike the read cache it never
// expires.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/dwalast/drugguide/pkg/utils"
)

type Option func(*Mirror)

func WithClock(now func() time.Time) Option {
	return func(m *Mirror) {
		m.now = now
	}
}

// Mirror serializes its read-modify-write helpers with a mutex. Processes
// sharing one redis or sql backend are not coordinated; the last save wins.
type Mirror struct {
	mu  sync.Mutex
	kv  repo.KV
	now func() time.Time
}

func New(kv repo.KV, opts ...Option) *Mirror {
	m := &Mirror{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func empty() *model.MirrorSnapshot {
	return &model.MirrorSnapshot{
		Drugs:     []model.LocalDrug{},
		Shortages: []model.LocalShortage{},
		Version:   constant.MirrorVersion,
	}
}

// LoadData returns the stored snapshot. It reports false when nothing is
// stored or when the stored value has no drugs array.
func (m *Mirror) LoadData(ctx context.Context) (*model.MirrorSnapshot, bool) {
	raw, err := m.kv.Get(ctx, constant.MirrorKey)
	if err != nil {
		if !errors.Is(err, code.RecordNotFound) {
			logger.Errorf(ctx, "mirror load err: %+v", err)
		}
		return nil, false
	}
	data, err := decode(raw)
	if err != nil {
		logger.Warnf(ctx, "mirror invalid local data: %+v", err)
		return nil, false
	}
	return data, true
}

func decode(raw []byte) (*model.MirrorSnapshot, error) {
	probe := &struct {
		Drugs json.RawMessage `json:"drugs"`
	}{}
	if err := json.Unmarshal(raw, probe); err != nil {
		return nil, err
	}
	if !isArray(probe.Drugs) {
		return nil, code.MirrorFormatErr
	}
	data := &model.MirrorSnapshot{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, err
	}
	if data.Shortages == nil {
		data.Shortages = []model.LocalShortage{}
	}
	return data, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// SaveData stamps version and lastUpdated and stores the whole snapshot.
func (m *Mirror) SaveData(ctx context.Context, data *model.MirrorSnapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx, data)
}

func (m *Mirror) save(ctx context.Context, data *model.MirrorSnapshot) bool {
	out := *data
	if out.Drugs == nil {
		out.Drugs = []model.LocalDrug{}
	}
	if out.Shortages == nil {
		out.Shortages = []model.LocalShortage{}
	}
	out.Version = constant.MirrorVersion
	out.LastUpdated = utils.ISOTime(m.now())

	raw, err := json.Marshal(&out)
	if err != nil {
		logger.Errorf(ctx, "mirror encode err: %+v", err)
		return false
	}
	if err := m.kv.Set(ctx, constant.MirrorKey, raw); err != nil {
		logger.Errorf(ctx, "mirror save err: %+v", err)
		return false
	}
	return true
}

func (m *Mirror) current(ctx context.Context) *model.MirrorSnapshot {
	if data, ok := m.LoadData(ctx); ok {
		return data
	}
	return empty()
}

func (m *Mirror) SaveDrugs(ctx context.Context, drugs []model.LocalDrug) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveDrugs(ctx, drugs)
}

func (m *Mirror) saveDrugs(ctx context.Context, drugs []model.LocalDrug) bool {
	data := m.current(ctx)
	data.Drugs = drugs
	return m.save(ctx, data)
}

func (m *Mirror) SaveShortages(ctx context.Context, shortages []model.LocalShortage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveShortages(ctx, shortages)
}

func (m *Mirror) saveShortages(ctx context.Context, shortages []model.LocalShortage) bool {
	data := m.current(ctx)
	data.Shortages = shortages
	return m.save(ctx, data)
}

func (m *Mirror) GetDrugs(ctx context.Context) []model.LocalDrug {
	if data, ok := m.LoadData(ctx); ok {
		return data.Drugs
	}
	return []model.LocalDrug{}
}

func (m *Mirror) GetShortages(ctx context.Context) []model.LocalShortage {
	if data, ok := m.LoadData(ctx); ok {
		return data.Shortages
	}
	return []model.LocalShortage{}
}

func (m *Mirror) AddDrug(ctx context.Context, d model.LocalDrug) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveDrugs(ctx, append(m.GetDrugs(ctx), d))
}

// UpdateDrug merges the non-zero fields of d into the drug with id.
func (m *Mirror) UpdateDrug(ctx context.Context, id string, d model.LocalDrug) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	drugs := m.GetDrugs(ctx)
	for i := range drugs {
		if drugs[i].ID == id {
			drugs[i] = mergeDrug(drugs[i], d)
		}
	}
	return m.saveDrugs(ctx, drugs)
}

func mergeDrug(old, d model.LocalDrug) model.LocalDrug {
	out := old
	out.ID = utils.Or(d.ID, old.ID)
	out.Name = utils.Or(d.Name, old.Name)
	out.No = utils.Or(d.No, old.No)
	out.UpdateDate = utils.Or(d.UpdateDate, old.UpdateDate)
	out.NewPrice = utils.Or(d.NewPrice, old.NewPrice)
	out.OldPrice = utils.Or(d.OldPrice, old.OldPrice)
	if d.ActiveIngredient != nil {
		out.ActiveIngredient = d.ActiveIngredient
	}
	if d.AverageDiscountPercent != nil {
		out.AverageDiscountPercent = d.AverageDiscountPercent
	}
	return out
}

func (m *Mirror) DeleteDrug(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	drugs := m.GetDrugs(ctx)
	kept := make([]model.LocalDrug, 0, len(drugs))
	for _, d := range drugs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	return m.saveDrugs(ctx, kept)
}

func (m *Mirror) AddShortage(ctx context.Context, s model.LocalShortage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveShortages(ctx, append(m.GetShortages(ctx), s))
}

// UpdateShortage merges the non-zero fields of s into the shortage with id.
func (m *Mirror) UpdateShortage(ctx context.Context, id string, s model.LocalShortage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	shortages := m.GetShortages(ctx)
	for i := range shortages {
		if shortages[i].ID != id {
			continue
		}
		old := shortages[i]
		shortages[i] = model.LocalShortage{
			ID:             utils.Or(s.ID, old.ID),
			DrugName:       utils.Or(s.DrugName, old.DrugName),
			Reason:         utils.Or(s.Reason, old.Reason),
			Status:         utils.Or(s.Status, old.Status),
			ReportDate:     utils.Or(s.ReportDate, old.ReportDate),
			LastUpdateDate: utils.Or(s.LastUpdateDate, old.LastUpdateDate),
		}
	}
	return m.saveShortages(ctx, shortages)
}

func (m *Mirror) DeleteShortage(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	shortages := m.GetShortages(ctx)
	kept := make([]model.LocalShortage, 0, len(shortages))
	for _, s := range shortages {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	return m.saveShortages(ctx, kept)
}

func (m *Mirror) ClearAllData(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Delete(ctx, constant.MirrorKey); err != nil {
		logger.Errorf(ctx, "mirror clear err: %+v", err)
		return false
	}
	return true
}

func (m *Mirror) ExportData(ctx context.Context) (*model.MirrorExport, bool) {
	data, ok := m.LoadData(ctx)
	if !ok {
		return nil, false
	}
	return &model.MirrorExport{
		MirrorSnapshot: *data,
		ExportDate:     utils.ISOTime(m.now()),
		TotalDrugs:     len(data.Drugs),
		TotalShortages: len(data.Shortages),
	}, true
}

// ImportData replaces the snapshot with the drugs and shortages found in
// raw. raw must carry a drugs array; shortages may be absent.
func (m *Mirror) ImportData(ctx context.Context, raw []byte) bool {
	data, err := decode(raw)
	if err != nil {
		logger.Warnf(ctx, "mirror import invalid data format: %+v", err)
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx, &model.MirrorSnapshot{
		Drugs:     data.Drugs,
		Shortages: data.Shortages,
	})
}

func (m *Mirror) GetStats(ctx context.Context) (*model.MirrorStats, bool) {
	data, ok := m.LoadData(ctx)
	if !ok {
		return nil, false
	}
	return &model.MirrorStats{
		TotalDrugs:     len(data.Drugs),
		TotalShortages: len(data.Shortages),
		LastUpdated:    data.LastUpdated,
		Version:        data.Version,
	}, true
}
