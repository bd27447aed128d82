package command

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/mirror"
	"github.com/dwalast/drugguide/pkg/core/pages"
	ratingimpl "github.com/dwalast/drugguide/pkg/core/rating/rating"
	"github.com/dwalast/drugguide/pkg/repo/kv"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/dwalast/drugguide/pkg/repo/remote/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *mirror.Mirror {
	ctx := context.Background()
	m := mirror.New(kv.NewMemory(), mirror.WithClock(func() time.Time { return fixed }))
	require.True(t, m.SaveDrugs(ctx, []model.LocalDrug{
		{ID: "1", Name: "Panadol", NewPrice: 15, OldPrice: 12, No: "1", UpdateDate: "15/10/2026"},
		{ID: "2", Name: "Brufen", NewPrice: 40, OldPrice: 50, No: "2", UpdateDate: "1/10/2026"},
		{ID: "3", Name: "Augmentin", NewPrice: 90.5, OldPrice: 90.5, No: "3", UpdateDate: "15/10/2026"},
	}))
	require.True(t, m.SaveShortages(ctx, []model.LocalShortage{
		{ID: "s1", DrugName: "Insulin", Status: model.ShortageCritical},
		{ID: "s2", DrugName: "Eltroxin", Status: model.ShortageResolved},
	}))
	return m
}

func TestDisplayRecords(t *testing.T) {
	ctx := context.Background()
	e := New(seeded(t), WithClock(func() time.Time { return fixed }))

	for _, name := range []string{"display-records", "show-records", " RECORDS "} {
		res := e.Execute(ctx, name)
		require.True(t, res.Success, name)
		assert.Equal(t, "تم جلب سجلات الموقع بنجاح", res.Message)
		assert.Equal(t, &Records{
			TotalDrugs:        3,
			TotalShortages:    2,
			CriticalShortages: 1,
			AveragePrice:      "48.50",
			PriceIncreases:    1,
			PriceDecreases:    1,
			UpdatedToday:      2,
			LastUpdated:       "15/10/2026",
			Version:           "1.0.0",
		}, res.Data)
	}
}

func TestCommandsWithoutData(t *testing.T) {
	ctx := context.Background()
	e := New(mirror.New(kv.NewMemory()))

	assert.Equal(t, "لا توجد بيانات متاحة", e.Execute(ctx, "records").Message)
	assert.Equal(t, "لا توجد بيانات للتصدير", e.Execute(ctx, "export").Message)
	assert.Equal(t, "لا توجد معلومات متاحة", e.Execute(ctx, "info").Message)
	assert.Equal(t, "لا توجد بيانات للنسخ الاحتياطي", e.Execute(ctx, "backup-data").Message)
	assert.True(t, e.Execute(ctx, "clear").Success)

	_, err := e.FullBackup(ctx)
	assert.Equal(t, code.MirrorEmpty, code.CodeOf(err))
}

func TestSystemInfoExportBackupClear(t *testing.T) {
	ctx := context.Background()
	m := seeded(t)
	e := New(m, WithClock(func() time.Time { return fixed }))

	res := e.Execute(ctx, "system-info")
	require.True(t, res.Success)
	info := res.Data.(*SystemInfo)
	assert.Equal(t, "مؤمن", info.SecurityStatus)
	assert.Equal(t, "نشط", info.CacheStatus)
	assert.Equal(t, 3, info.TotalDrugs)
	assert.Equal(t, "15/10/2026", info.LastUpdated)

	res = e.Execute(ctx, "export-data")
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Data.(*model.MirrorExport).TotalShortages)

	res = e.Execute(ctx, "backup")
	require.True(t, res.Success)
	backup := res.Data.(*Backup)
	assert.Equal(t, "full", backup.BackupType)
	assert.Equal(t, "2026-10-15T09:00:00.000Z", backup.BackupDate)
	assert.Equal(t, "1.0.0", backup.SystemInfo.Version)
	raw, err := json.Marshal(backup)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalDrugs":3`)
	assert.Contains(t, string(raw), `"backupType":"full"`)

	res = e.Execute(ctx, "clear-data")
	require.True(t, res.Success)
	_, ok := m.LoadData(ctx)
	assert.False(t, ok)
}

func TestUnknownCommand(t *testing.T) {
	res := New(mirror.New(kv.NewMemory())).Execute(context.Background(), "reboot")
	assert.False(t, res.Success)
	assert.Equal(t, `الأمر "reboot" غير معروف. الأوامر المتاحة: display-records, export, clear, system-info, backup`, res.Message)
}

func TestFullBackup(t *testing.T) {
	ctx := context.Background()
	srv := remotetest.New(t)
	srv.Seed("pages/about", map[string]any{"title": "About us"})
	ratings := ratingimpl.NewRating(srv.Store(), kv.NewMemory())
	_, err := ratings.AddWebsiteRating(ctx, &model.RatingInput{Rating: 5, UserName: "Omar"})
	require.NoError(t, err)
	_, err = ratings.AddProductRating(ctx, "1", &model.RatingInput{Rating: 4, UserName: "Omar"})
	require.NoError(t, err)

	e := New(seeded(t),
		WithPages(pages.New(srv.Store())),
		WithRatings(ratings),
		WithClock(func() time.Time { return fixed }))
	b, err := e.FullBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "About us", b.AboutContent["title"])
	assert.Equal(t, pages.DefaultContact.Title, b.ContactContent["title"])
	assert.Equal(t, 1, b.TotalProductRatings)
	assert.Equal(t, 1, b.TotalWebsiteRatings)
	assert.Equal(t, "1", b.Ratings.ProductRatings[0].DrugID)
	assert.Equal(t, 3, b.TotalDrugs)
	assert.Equal(t, "2026-10-15T09:00:00.000Z", b.BackupDate)
}
