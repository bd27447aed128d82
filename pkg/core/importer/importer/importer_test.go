package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dwalast/drugguide/pkg/core/cache"
	impl "github.com/dwalast/drugguide/pkg/core/catalog/catalog"
	"github.com/dwalast/drugguide/pkg/core/importer"
	"github.com/dwalast/drugguide/pkg/core/mirror"
	"github.com/dwalast/drugguide/pkg/core/notify"
	"github.com/dwalast/drugguide/pkg/repo/kv"
	"github.com/dwalast/drugguide/pkg/repo/remote/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	msgs []*notify.SendMsg
}

func (r *recorder) Registry(context.Context, notify.Action, notify.HandleFunc) error {
	return nil
}

func (r *recorder) Broadcast(_ context.Context, msg *notify.SendMsg) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) Close(context.Context) error {
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func setup(t *testing.T) (*remotetest.Server, *mirror.Mirror, *recorder, importer.Service) {
	srv := remotetest.New(t)
	m := mirror.New(kv.NewMemory())
	rec := &recorder{}
	svc := NewImporter(srv.Store(), m,
		WithMsgCenter(rec),
		WithWorkers(4),
		WithClock(func() time.Time { return fixed }))
	return srv, m, rec, svc
}

func TestImportThenList(t *testing.T) {
	ctx := context.Background()
	srv, _, rec, svc := setup(t)

	res := svc.ImportFile(ctx, "drugs.json",
		[]byte(`{"drugs": {"0": {"name":"Panadol","newPrice":15,"oldPrice":12}}}`), importer.ModeReplace)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.ImportedCount)
	assert.Zero(t, res.ErrorCount)
	assert.Equal(t, "تم استيراد 1 دواء بنجاح", res.Message)
	assert.Equal(t, 1, rec.count())

	stored := map[string]any{}
	require.NoError(t, srv.Decode("drugs/0", &stored))
	assert.Equal(t, "Panadol", stored["name"])
	assert.Equal(t, "admin", srv.Data("drugs/importedBy"))
	assert.Equal(t, "2026-10-15T08:00:00.000Z", srv.Data("drugs/lastImport"))

	catalog := impl.NewCatalog(ctx, srv.Store(), cache.New(kv.NewMemory()))
	list, err := catalog.FetchDrugsAndShortages(ctx, true)
	require.NoError(t, err)
	require.Len(t, list.Drugs, 1)
	d := list.Drugs[0]
	assert.Equal(t, "Panadol", d.Name)
	assert.True(t, d.IsIncrease())
	assert.Equal(t, 3.0, d.PriceChange)
	assert.Equal(t, 25.0, d.PriceChangePercent)
}

func TestWritesClearWarmCache(t *testing.T) {
	ctx := context.Background()
	srv := remotetest.New(t)
	c := cache.New(kv.NewMemory())
	svc := NewImporter(srv.Store(), mirror.New(kv.NewMemory()),
		WithCache(c),
		WithMsgCenter(&recorder{}),
		WithClock(func() time.Time { return fixed }))
	catalog := impl.NewCatalog(ctx, srv.Store(), c)
	srv.Seed("drugs/0", map[string]any{"name": "Old", "newPrice": 10, "oldPrice": 10})

	names := func() []string {
		list, err := catalog.FetchDrugsAndShortages(ctx, false)
		require.NoError(t, err)
		out := make([]string, 0, len(list.Drugs))
		for _, d := range list.Drugs {
			out = append(out, d.Name)
		}
		return out
	}
	require.Equal(t, []string{"Old"}, names())

	res := svc.ImportFile(ctx, "drugs.json", []byte(`{"drugs": {
		"0": {"name":"Panadol","newPrice":15,"oldPrice":12},
		"1": {"name":"Brufen","newPrice":40,"oldPrice":35}}}`), importer.ModeReplace)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"Panadol", "Brufen"}, names())

	require.NoError(t, svc.UpdateDrugInfo(ctx, "1", map[string]any{"name": "Brufen Plus"}))
	assert.Equal(t, []string{"Panadol", "Brufen Plus"}, names())

	require.NoError(t, svc.DeleteDrug(ctx, "1"))
	assert.Equal(t, []string{"Panadol"}, names())

	_, err := svc.AddDrug(ctx, map[string]any{"name": "Augmentin", "newPrice": 90.0, "oldPrice": 80.0})
	require.NoError(t, err)
	_, cached := c.Get(ctx)
	assert.False(t, cached)
}

func TestInvalidEntriesAreSkipped(t *testing.T) {
	ctx := context.Background()
	srv, _, _, svc := setup(t)

	res := svc.ProcessImportData(ctx, map[string]any{
		"0": map[string]any{"name": "Panadol", "newPrice": 15.0, "oldPrice": 12.0},
		"1": map[string]any{"name": "  ", "newPrice": 20.0},
		"2": map[string]any{"name": "Brufen", "newPrice": 40.0, "oldPrice": 35.0},
	}, importer.ModeReplace)

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, []string{"السطر 1: اسم الدواء مطلوب"}, res.Errors)
	assert.Equal(t, "تم استيراد 2 دواء بنجاح مع 1 خطأ", res.Message)

	assert.NotNil(t, srv.Data("drugs/0"))
	assert.Nil(t, srv.Data("drugs/1"))
	assert.NotNil(t, srv.Data("drugs/2"))
}

func TestEntryRules(t *testing.T) {
	ctx := context.Background()
	srv, _, rec, svc := setup(t)

	res := svc.ProcessImportData(ctx, []any{
		"oops",
		map[string]any{"name": "Panadol", "newPrice": "15"},
		map[string]any{"name": "Brufen", "newPrice": -1.0},
		map[string]any{"newPrice": 3.0},
	}, importer.ModeReplace)

	assert.False(t, res.Success)
	assert.Zero(t, res.ImportedCount)
	assert.Equal(t, []string{
		"السطر 0: بيانات غير صالحة",
		"السطر 1: السعر الجديد غير صالح",
		"السطر 2: السعر الجديد غير صالح",
		"السطر 3: اسم الدواء مطلوب",
	}, res.Errors)
	assert.Zero(t, srv.Requests(http.MethodPut, "drugs"))
	assert.Zero(t, rec.count())
}

func TestErrorsAreCapped(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := setup(t)

	data := map[string]any{"0": map[string]any{"name": "Panadol", "newPrice": 1.0}}
	for i := 1; i <= 12; i++ {
		data[fmt.Sprint(i)] = map[string]any{"name": ""}
	}
	res := svc.ProcessImportData(ctx, data, importer.ModeReplace)
	assert.Equal(t, 1, res.ImportedCount)
	assert.Equal(t, 12, res.ErrorCount)
	require.Len(t, res.Errors, 10)
	assert.Equal(t, "السطر 1: اسم الدواء مطلوب", res.Errors[0])
	assert.Equal(t, "السطر 10: اسم الدواء مطلوب", res.Errors[9])
}

func TestMergeKeepsUntouchedKeys(t *testing.T) {
	ctx := context.Background()
	srv, _, _, svc := setup(t)
	seed := map[string]any{
		"0":          map[string]any{"name": "Old Panadol", "newPrice": 10},
		"5":          map[string]any{"name": "Augmentin", "newPrice": 90},
		"updateDate": "1/10/2026",
	}

	srv.Seed("drugs", seed)
	res := svc.ProcessImportData(ctx, map[string]any{
		"0": map[string]any{"name": "Panadol", "newPrice": 15.0},
	}, importer.ModeMerge)
	require.True(t, res.Success)
	assert.Equal(t, "Panadol", srv.Data("drugs/0/name"))
	assert.Equal(t, "Augmentin", srv.Data("drugs/5/name"))
	assert.Equal(t, "1/10/2026", srv.Data("drugs/updateDate"))

	srv.Seed("drugs", seed)
	res = svc.ProcessImportData(ctx, map[string]any{
		"0": map[string]any{"name": "Panadol", "newPrice": 15.0},
	}, importer.ModeReplace)
	require.True(t, res.Success)
	assert.Equal(t, "Panadol", srv.Data("drugs/0/name"))
	assert.Nil(t, srv.Data("drugs/5"))
	assert.Nil(t, srv.Data("drugs/updateDate"))

	res = svc.ProcessImportData(ctx, map[string]any{}, "upsert")
	assert.False(t, res.Success)
}

func TestWriteFailure(t *testing.T) {
	ctx := context.Background()
	srv, _, rec, svc := setup(t)
	srv.Fail(http.MethodPut, "drugs", http.StatusInternalServerError, 1)

	res := svc.ProcessImportData(ctx, []any{
		map[string]any{"name": "Panadol", "newPrice": 15.0},
	}, importer.ModeReplace)
	assert.False(t, res.Success)
	assert.Equal(t, "فشل في معالجة البيانات", res.Message)
	assert.Equal(t, []string{"فشل في حفظ البيانات: 500"}, res.Errors)
	assert.Zero(t, res.ImportedCount)
	assert.Zero(t, rec.count())
}

func TestImportFileFormats(t *testing.T) {
	ctx := context.Background()
	srv, _, _, svc := setup(t)

	res := svc.ImportFile(ctx, "drugs.json", []byte(`{"drugs": [`), importer.ModeReplace)
	assert.False(t, res.Success)
	assert.Equal(t, "خطأ في قراءة الملف", res.Message)
	assert.Equal(t, 1, res.ErrorCount)

	res = svc.ImportFile(ctx, "drugs.json", []byte(`42`), importer.ModeReplace)
	assert.False(t, res.Success)
	assert.Equal(t, "ملف غير صالح - يجب أن يكون ملف JSON صحيح", res.Message)
	assert.Equal(t, []string{"تنسيق الملف غير صحيح"}, res.Errors)

	res = svc.ImportFile(ctx, "drugs.CSV", []byte("name,oldPrice\nPanadol,12\n"), importer.ModeReplace)
	assert.False(t, res.Success)
	assert.Equal(t, "ملف CSV غير صالح", res.Message)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Zero(t, srv.Requests("", "drugs"))

	res = svc.ImportFile(ctx, "drugs.csv",
		[]byte("name,newPrice,oldPrice\nPanadol,15,12\n\"Brufen, 400\",40,35\n"), importer.ModeReplace)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Equal(t, "Brufen, 400", srv.Data("drugs/1/name"))
	assert.Equal(t, "2", srv.Data("drugs/1/no"))
}

func TestImportFromRemote(t *testing.T) {
	ctx := context.Background()
	srv, _, _, svc := setup(t)

	res := svc.ImportFromRemote(ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "لا توجد بيانات في Firebase", res.Message)

	srv.Seed("drugs", map[string]any{
		"0":          map[string]any{"name": "Panadol", "newPrice": 15},
		"1":          map[string]any{"name": "", "newPrice": 3},
		"lastImport": "2026-01-01T00:00:00.000Z",
		"importedBy": "admin",
		"updateDate": "1/10/2026",
	})
	res = svc.ImportFromRemote(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.ImportedCount)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Nil(t, srv.Data("drugs/1"))
	assert.Equal(t, "1/10/2026", srv.Data("drugs/updateDate"))
	assert.Equal(t, "2026-10-15T08:00:00.000Z", srv.Data("drugs/lastImport"))
}

func TestExportToFile(t *testing.T) {
	ctx := context.Background()
	srv, _, _, svc := setup(t)
	srv.Seed("drugs", map[string]any{
		"0": map[string]any{"name": "Panadol", "newPrice": 15},
		"1": map[string]any{"name": "Brufen", "newPrice": 40},
	})

	raw, err := svc.ExportToFile(ctx)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "\n  \"exportDate\""))

	out := &importer.ExportFile{}
	require.NoError(t, json.Unmarshal(raw, out))
	assert.Equal(t, "2026-10-15T08:00:00.000Z", out.ExportDate)
	assert.Equal(t, 2, out.DrugCount)

	// an export file imports back unchanged
	srv.Seed("drugs", nil)
	res := svc.ImportFile(ctx, "export.json", raw, importer.ModeReplace)
	require.True(t, res.Success)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Equal(t, "Brufen", srv.Data("drugs/1/name"))
}

func TestImportBackupToMirror(t *testing.T) {
	ctx := context.Background()
	srv, m, rec, svc := setup(t)

	res := svc.ImportBackupToMirror(ctx, []byte(`{"drugs":{}}`))
	assert.False(t, res.Success)
	assert.Equal(t, "تنسيق الملف غير صحيح", res.Message)

	res = svc.ImportBackupToMirror(ctx, []byte(`{"drugs":[{"name":"Panadol","newPrice":0,"oldPrice":12,"no":"1"}]}`))
	assert.False(t, res.Success)
	assert.Equal(t, "لا توجد بيانات أدوية صحيحة في الملف", res.Message)
	assert.Empty(t, m.GetDrugs(ctx))

	backup := `{"drugs":[
		{"id":"a1","name":"Panadol","newPrice":15,"oldPrice":12,"no":"1","updateDate":"1/1/2026","activeIngredient":""},
		{"id":"a2","name":"Brufen","newPrice":40,"oldPrice":35,"no":"2","averageDiscountPercent":12.5},
		{"id":"a3","name":"Broken","newPrice":0,"oldPrice":10,"no":"3"}
	],"shortages":[{"id":"s1","drugName":"Insulin","status":"critical"}]}`
	res = svc.ImportBackupToMirror(ctx, []byte(backup))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Zero(t, res.ErrorCount)
	assert.Equal(t, 1, rec.count())

	assert.Len(t, m.GetDrugs(ctx), 3)
	assert.Len(t, m.GetShortages(ctx), 1)

	saved := map[string]any{}
	require.NoError(t, srv.Decode("drugs/a1", &saved))
	assert.Equal(t, "15/10/2026", saved["updateDate"])
	assert.NotContains(t, saved, "activeIngredient")
	assert.Equal(t, 12.5, srv.Data("drugs/a2/averageDiscountPercent"))
	assert.Nil(t, srv.Data("drugs/a3"))
	assert.Equal(t, "15/10/2026", srv.Data("drugs/updateDate"))
}

func TestImportBackupAcceptsLooseTypes(t *testing.T) {
	ctx := context.Background()
	srv, m, _, svc := setup(t)

	res := svc.ImportBackupToMirror(ctx, []byte(`{"drugs":[
		{"id":"a1","name":"Panadol","newPrice":"15","oldPrice":"12,5","no":101},
		{"id":"a2","name":"Brufen","newPrice":40,"oldPrice":35,"no":"102","averageDiscountPercent":"7"}
	],"shortages":[{"id":"s1","drugName":"Insulin","status":"critical"},{"id":7}]}`))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.ImportedCount)

	drugs := m.GetDrugs(ctx)
	require.Len(t, drugs, 2)
	assert.Equal(t, "101", drugs[0].No)
	assert.Equal(t, 15.0, drugs[0].NewPrice)
	assert.Equal(t, 12.5, drugs[0].OldPrice)
	assert.Nil(t, drugs[0].AverageDiscountPercent)
	if assert.NotNil(t, drugs[1].AverageDiscountPercent) {
		assert.Equal(t, 7.0, *drugs[1].AverageDiscountPercent)
	}
	assert.Len(t, m.GetShortages(ctx), 1)
	assert.Equal(t, "Panadol", srv.Data("drugs/a1/name"))
}

func TestImportBackupReportsFailedWrites(t *testing.T) {
	ctx := context.Background()
	srv, _, _, svc := setup(t)
	srv.Fail(http.MethodPut, "drugs/a2", http.StatusServiceUnavailable, 1)

	res := svc.ImportBackupToMirror(ctx, []byte(`{"drugs":[
		{"id":"a1","name":"Panadol","newPrice":15,"oldPrice":12,"no":"1"},
		{"id":"a2","name":"Brufen","newPrice":40,"oldPrice":35,"no":"2"}
	]}`))
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.ImportedCount)
	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "السطر a2: "))
}

func TestSingleDrugWrites(t *testing.T) {
	ctx := context.Background()
	srv, _, rec, svc := setup(t)

	key, err := svc.AddDrug(ctx, map[string]any{"name": "Panadol", "newPrice": 15.0})
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.NotEmpty(t, srv.Data("drugs/"+key+"/id"))
	assert.Equal(t, "2026-10-15T08:00:00.000Z", srv.Data("drugs/"+key+"/createdAt"))

	require.NoError(t, svc.UpdateDrugInfo(ctx, key, map[string]any{"newPrice": 18.0}))
	assert.Equal(t, 18.0, srv.Data("drugs/"+key+"/newPrice"))
	assert.Equal(t, "Panadol", srv.Data("drugs/"+key+"/name"))
	assert.Equal(t, "2026-10-15T08:00:00.000Z", srv.Data("drugs/"+key+"/lastModified"))

	require.NoError(t, svc.DeleteDrug(ctx, key))
	assert.Nil(t, srv.Data("drugs/"+key))
	assert.Equal(t, 3, rec.count())

	srv.Fail(http.MethodPatch, "drugs/x", http.StatusInternalServerError, 1)
	assert.Error(t, svc.UpdateDrugInfo(ctx, "x", map[string]any{"newPrice": 1.0}))
	assert.Error(t, svc.DeleteDrug(ctx, ""))
	assert.Equal(t, 3, rec.count())
}
