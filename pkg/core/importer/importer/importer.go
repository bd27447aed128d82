package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dwalast/drugguide/internal/config"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/common/uuid"
	"github.com/dwalast/drugguide/pkg/core/cache"
	"github.com/dwalast/drugguide/pkg/core/drug"
	"github.com/dwalast/drugguide/pkg/core/importer"
	"github.com/dwalast/drugguide/pkg/core/mirror"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/dwalast/drugguide/pkg/utils"
	"github.com/panjf2000/ants/v2"
)

const defaultWorkers = 8

// metaKeys live next to the drug entries in the remote mapping.
var metaKeys = map[string]bool{
	"lastImport": true,
	"importedBy": true,
	"updateDate": true,
}

type Option func(*importerImpl)

// WithMsgCenter broadcasts a catalog invalidation after every write.
func WithMsgCenter(center notify.MsgCenter) Option {
	return func(i *importerImpl) {
		i.msgCenter = center
	}
}

// WithCache clears the read cache before a write returns.
func WithCache(c *cache.Cache) Option {
	return func(i *importerImpl) {
		i.cache = c
	}
}

func WithWorkers(n int) Option {
	return func(i *importerImpl) {
		if n > 0 {
			i.workers = n
		}
	}
}

func WithImportedBy(name string) Option {
	return func(i *importerImpl) {
		i.importedBy = utils.Or(name, i.importedBy)
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *importerImpl) {
		i.now = now
	}
}

type importerImpl struct {
	remote     repo.RemoteStore
	mirror     *mirror.Mirror
	msgCenter  notify.MsgCenter
	cache      *cache.Cache
	workers    int
	importedBy string
	now        func() time.Time
}

func NewImporter(remote repo.RemoteStore, m *mirror.Mirror, opts ...Option) importer.Service {
	conf := config.Global().Import
	impl := &importerImpl{
		remote:     remote,
		mirror:     m,
		workers:    utils.Or(conf.Workers, defaultWorkers),
		importedBy: utils.Or(conf.ImportedBy, constant.ImportedBy),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(impl)
	}
	return impl
}

func (i *importerImpl) ProcessImportData(ctx context.Context, data any, mode importer.Mode) *importer.ImportResult {
	mode = utils.Or(mode, importer.ModeReplace)
	if !mode.Valid() {
		return importer.Failed("وضع الاستيراد غير صالح", string(mode))
	}

	drugs, err := entries(data)
	if err != nil {
		return importer.Failed(code.ImportFormatErr.String(), "تنسيق الملف غير صحيح")
	}

	valid := make(map[string]any, len(drugs))
	errs := make([]string, 0)
	updateDate := ""
	for _, key := range sortedKeys(drugs) {
		v := drugs[key]
		if _, isEntry := v.(map[string]any); metaKeys[key] && !isEntry {
			if s, ok := v.(string); ok && key == "updateDate" {
				updateDate = s
			}
			continue
		}
		if msg := drug.CheckImportEntry(key, v); msg != "" {
			errs = append(errs, msg)
			continue
		}
		valid[key] = v
	}

	if len(valid) > 0 {
		if err := i.write(ctx, valid, updateDate, mode); err != nil {
			logger.Errorf(ctx, "import write drugs err: %+v", err)
			return importer.Failed("فشل في معالجة البيانات", saveErrMsg(err))
		}
		i.invalidate(ctx, "import")
	}

	shown := errs
	if len(shown) > constant.MaxImportErrors {
		shown = shown[:constant.MaxImportErrors]
	}
	return &importer.ImportResult{
		Success:       len(valid) > 0,
		Message:       importer.ImportedMessage(len(valid), len(errs)),
		ImportedCount: len(valid),
		ErrorCount:    len(errs),
		Errors:        shown,
	}
}

// write replaces the remote mapping with the accepted entries, or overlays
// them on the current mapping in merge mode.
func (i *importerImpl) write(ctx context.Context, valid map[string]any, updateDate string, mode importer.Mode) error {
	payload := make(map[string]any, len(valid)+3)
	if mode == importer.ModeMerge {
		current, err := i.currentMapping(ctx)
		if err != nil {
			return err
		}
		for k, v := range current {
			payload[k] = v
		}
	}
	for k, v := range valid {
		payload[k] = v
	}
	if updateDate != "" {
		payload["updateDate"] = updateDate
	}
	payload["lastImport"] = utils.ISOTime(i.now())
	payload["importedBy"] = i.importedBy
	return i.remote.Put(ctx, constant.DrugsPath, payload)
}

func (i *importerImpl) currentMapping(ctx context.Context) (map[string]any, error) {
	var data any
	if err := i.remote.Get(ctx, constant.DrugsPath, nil, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return map[string]any{}, nil
	}
	return entries(data)
}

func saveErrMsg(err error) string {
	if status := repo.HTTPStatus(err); status > 0 {
		return fmt.Sprintf("فشل في حفظ البيانات: %d", status)
	}
	return code.Message(err)
}

// entries accepts an array of drugs, an export with a drugs field or a
// keyed mapping, and returns the keyed mapping.
func entries(data any) (map[string]any, error) {
	switch d := data.(type) {
	case []any:
		out := make(map[string]any, len(d))
		for idx, v := range d {
			if v != nil {
				out[strconv.Itoa(idx)] = v
			}
		}
		return out, nil
	case map[string]any:
		inner, ok := d["drugs"]
		if !ok || !truthy(inner) {
			return d, nil
		}
		switch n := inner.(type) {
		case map[string]any:
			return n, nil
		case []any:
			return entries(n)
		}
	}
	return nil, code.ImportFormatErr
}

// sortedKeys orders numeric keys by value ahead of the rest.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		na, okA := drug.NumericKey(keys[a])
		nb, okB := drug.NumericKey(keys[b])
		switch {
		case okA && okB:
			return na < nb
		case okA:
			return true
		case okB:
			return false
		}
		return keys[a] < keys[b]
	})
	return keys
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	}
	return true
}

func (i *importerImpl) ImportFile(ctx context.Context, filename string, content []byte, mode importer.Mode) *importer.ImportResult {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		text := string(content)
		if v := importer.ValidateCSV(text); !v.Valid {
			return importer.Failed("ملف CSV غير صالح", v.Errors...)
		}
		records, err := importer.CSVToJSON(text)
		if err != nil {
			logger.Warnf(ctx, "convert csv %s err: %+v", filename, err)
			return importer.Failed("خطأ في قراءة الملف", err.Error())
		}
		rows := make([]any, len(records))
		for idx, rec := range records {
			rows[idx] = map[string]any(rec)
		}
		return i.ProcessImportData(ctx, rows, mode)
	}

	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		logger.Warnf(ctx, "parse import file %s err: %+v", filename, err)
		return importer.Failed("خطأ في قراءة الملف", err.Error())
	}
	switch data.(type) {
	case map[string]any, []any:
	default:
		return importer.Failed(code.ImportFormatErr.String(), "تنسيق الملف غير صحيح")
	}
	return i.ProcessImportData(ctx, data, mode)
}

func (i *importerImpl) ImportFromRemote(ctx context.Context) *importer.ImportResult {
	var data any
	if err := i.remote.Get(ctx, constant.DrugsPath, nil, &data); err != nil {
		logger.Errorf(ctx, "ImportFromRemote get drugs err: %+v", err)
		return importer.Failed("فشل في الاتصال بـ Firebase", code.Message(err))
	}
	if data == nil {
		return importer.Failed("لا توجد بيانات في Firebase")
	}
	return i.ProcessImportData(ctx, data, importer.ModeReplace)
}

func (i *importerImpl) ExportToFile(ctx context.Context) ([]byte, error) {
	var data any
	if err := i.remote.Get(ctx, constant.DrugsPath, nil, &data); err != nil {
		logger.Errorf(ctx, "ExportToFile get drugs err: %+v", err)
		return nil, code.ExportErr.WithCause(err)
	}

	count := 0
	switch d := data.(type) {
	case map[string]any:
		count = len(d)
	case []any:
		count = len(d)
	}
	out, err := json.MarshalIndent(&importer.ExportFile{
		ExportDate: utils.ISOTime(i.now()),
		DrugCount:  count,
		Drugs:      data,
	}, "", "  ")
	if err != nil {
		return nil, code.ExportErr.WithCause(err)
	}
	return out, nil
}

func (i *importerImpl) ImportBackupToMirror(ctx context.Context, content []byte) *importer.ImportResult {
	backup := &struct {
		Drugs     json.RawMessage   `json:"drugs"`
		Shortages []json.RawMessage `json:"shortages"`
	}{}
	if err := json.Unmarshal(content, backup); err != nil {
		return importer.Failed("فشل في استيراد البيانات", err.Error())
	}
	var list []any
	if err := json.Unmarshal(backup.Drugs, &list); err != nil || list == nil {
		return importer.Failed("تنسيق الملف غير صحيح")
	}

	snapshot := &model.MirrorSnapshot{
		Drugs:     make([]model.LocalDrug, 0, len(list)),
		Shortages: localShortages(ctx, backup.Shortages),
	}
	usable := make([]map[string]any, 0, len(list))
	for _, v := range list {
		rec, ok := v.(map[string]any)
		if !ok {
			continue
		}
		snapshot.Drugs = append(snapshot.Drugs, localDrug(rec))
		if truthy(rec["name"]) && truthy(rec["newPrice"]) && truthy(rec["oldPrice"]) && truthy(rec["no"]) {
			usable = append(usable, rec)
		}
	}
	if len(usable) == 0 {
		return importer.Failed("لا توجد بيانات أدوية صحيحة في الملف")
	}
	if !i.mirror.SaveData(ctx, snapshot) {
		return importer.Failed("فشل في حفظ البيانات محلياً")
	}

	errs := i.saveAll(ctx, usable)
	saved := len(usable) - len(errs)
	if saved > 0 {
		i.invalidate(ctx, "mirror-import")
	}
	return &importer.ImportResult{
		Success:       saved > 0,
		Message:       importer.ImportedMessage(saved, len(errs)),
		ImportedCount: saved,
		ErrorCount:    len(errs),
		Errors:        errs,
	}
}

// saveAll writes each drug to /drugs/{id} on a bounded pool and returns
// one message per failed write.
func (i *importerImpl) saveAll(ctx context.Context, drugs []map[string]any) []string {
	pool, err := ants.NewPool(i.workers)
	if err != nil {
		logger.Errorf(ctx, "import pool err: %+v", err)
		return []string{code.Message(err)}
	}
	defer pool.Release()

	today := drug.Today(i.now())
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = make([]string, 0)
	)
	fail := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, fmt.Sprintf("السطر %s: %s", id, code.Message(err)))
	}

	for idx, d := range drugs {
		id := utils.Or(keyOf(d["id"]), keyOf(d["no"]), strconv.Itoa(idx))
		rec := backupRecord(d, today)
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := i.remote.Put(ctx, constant.DrugsPath+"/"+id, rec); err != nil {
				logger.Errorf(ctx, "save drug %s err: %+v", id, err)
				fail(id, err)
			}
		}); err != nil {
			wg.Done()
			fail(id, err)
		}
	}
	wg.Wait()

	if err := i.remote.Put(ctx, constant.DrugsPath+"/updateDate", today); err != nil {
		logger.Warnf(ctx, "save drugs updateDate err: %+v", err)
	}
	sort.Strings(errs)
	return errs
}

func backupRecord(d map[string]any, today string) map[string]any {
	rec := make(map[string]any, len(d)+1)
	for k, v := range d {
		rec[k] = v
	}
	rec["updateDate"] = today
	if !truthy(rec["activeIngredient"]) {
		delete(rec, "activeIngredient")
	}
	if v, ok := rec["averageDiscountPercent"]; ok {
		if f, ok := drug.ParsePrice(v); ok && f != 0 {
			rec["averageDiscountPercent"] = f
		} else {
			delete(rec, "averageDiscountPercent")
		}
	}
	return rec
}

// localDrug converts a backup row into the mirror shape. Numbers and numeric
// strings are both accepted for no and the prices.
func localDrug(rec map[string]any) model.LocalDrug {
	d := model.LocalDrug{
		ID:   keyOf(rec["id"]),
		No:   keyOf(rec["no"]),
		Name: keyOf(rec["name"]),
	}
	if p, ok := drug.ParsePrice(rec["newPrice"]); ok {
		d.NewPrice = p
	}
	if p, ok := drug.ParsePrice(rec["oldPrice"]); ok {
		d.OldPrice = p
	}
	if s, ok := rec["updateDate"].(string); ok {
		d.UpdateDate = s
	}
	if s, ok := rec["activeIngredient"].(string); ok {
		d.ActiveIngredient = &s
	}
	if v := rec["averageDiscountPercent"]; v != nil {
		if p, ok := drug.ParsePrice(v); ok {
			d.AverageDiscountPercent = &p
		}
	}
	return d
}

// localShortages drops rows that do not decode instead of failing the restore.
func localShortages(ctx context.Context, rows []json.RawMessage) []model.LocalShortage {
	out := make([]model.LocalShortage, 0, len(rows))
	for _, row := range rows {
		s := model.LocalShortage{}
		if err := json.Unmarshal(row, &s); err != nil {
			logger.Warnf(ctx, "skip backup shortage err: %+v", err)
			continue
		}
		out = append(out, s)
	}
	return out
}

func keyOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func (i *importerImpl) UpdateDrugInfo(ctx context.Context, drugID string, updates model.RawRecord) error {
	if drugID == "" {
		return code.ParamErr.WithMsg("drug id required")
	}
	body := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		body[k] = v
	}
	body["lastModified"] = utils.ISOTime(i.now())
	if err := i.remote.Patch(ctx, constant.DrugsPath+"/"+drugID, body); err != nil {
		logger.Errorf(ctx, "UpdateDrugInfo %s err: %+v", drugID, err)
		return err
	}
	i.invalidate(ctx, "drug-update")
	return nil
}

// AddDrug posts a new drug and returns the key the store assigned.
func (i *importerImpl) AddDrug(ctx context.Context, rec model.RawRecord) (string, error) {
	now := utils.ISOTime(i.now())
	body := make(map[string]any, len(rec)+3)
	for k, v := range rec {
		body[k] = v
	}
	body["id"] = uuid.NewString()
	body["createdAt"] = now
	body["lastModified"] = now
	key, err := i.remote.Post(ctx, constant.DrugsPath, body)
	if err != nil {
		logger.Errorf(ctx, "AddDrug err: %+v", err)
		return "", err
	}
	i.invalidate(ctx, "drug-add")
	return key, nil
}

func (i *importerImpl) DeleteDrug(ctx context.Context, drugID string) error {
	if drugID == "" {
		return code.ParamErr.WithMsg("drug id required")
	}
	if err := i.remote.Delete(ctx, constant.DrugsPath+"/"+drugID); err != nil {
		logger.Errorf(ctx, "DeleteDrug %s err: %+v", drugID, err)
		return err
	}
	i.invalidate(ctx, "drug-delete")
	return nil
}

func (i *importerImpl) invalidate(ctx context.Context, reason string) {
	if i.cache != nil {
		i.cache.Clear(ctx)
	}
	if i.msgCenter == nil {
		return
	}
	if err := i.msgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel: notify.CatalogInvalidate,
		Reason:  reason,
	}); err != nil {
		logger.Warnf(ctx, "broadcast catalog invalidate err: %+v", err)
	}
}
