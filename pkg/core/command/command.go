// Package command runs the named maintenance commands of the admin console
// against the Local Mirror.
package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/drug"
	"github.com/dwalast/drugguide/pkg/core/mirror"
	"github.com/dwalast/drugguide/pkg/core/pages"
	"github.com/dwalast/drugguide/pkg/core/rating"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/dwalast/drugguide/pkg/utils"
)

const unknownDate = "غير محدد"

type handler func(ctx context.Context) *Result

type Option func(*Executor)

func WithPages(p *pages.Store) Option {
	return func(e *Executor) {
		e.pages = p
	}
}

func WithRatings(r rating.Service) Option {
	return func(e *Executor) {
		e.ratings = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

type Executor struct {
	mirror   *mirror.Mirror
	pages    *pages.Store
	ratings  rating.Service
	now      func() time.Time
	commands map[string]handler
}

func New(m *mirror.Mirror, opts ...Option) *Executor {
	e := &Executor{mirror: m, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.commands = map[string]handler{
		"display-records": e.displayRecords,
		"show-records":    e.displayRecords,
		"records":         e.displayRecords,
		"export":          e.exportData,
		"export-data":     e.exportData,
		"clear":           e.clearData,
		"clear-data":      e.clearData,
		"system-info":     e.systemInfo,
		"info":            e.systemInfo,
		"backup":          e.backupData,
		"backup-data":     e.backupData,
	}
	return e
}

// Execute runs the command called name. Names are case insensitive.
func (e *Executor) Execute(ctx context.Context, name string) *Result {
	name = strings.TrimSpace(name)
	if h, ok := e.commands[strings.ToLower(name)]; ok {
		return h(ctx)
	}
	return &Result{
		Message: fmt.Sprintf("الأمر \"%s\" غير معروف. الأوامر المتاحة: display-records, export, clear, system-info, backup", name),
	}
}

// displayDate renders an ISO timestamp as a calendar date.
func displayDate(iso string) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return unknownDate
	}
	return drug.Today(t)
}

func (e *Executor) displayRecords(ctx context.Context) *Result {
	data, ok := e.mirror.LoadData(ctx)
	if !ok {
		return &Result{Message: "لا توجد بيانات متاحة"}
	}

	today := drug.Today(e.now())
	rec := &Records{
		TotalDrugs:     len(data.Drugs),
		TotalShortages: len(data.Shortages),
		LastUpdated:    unknownDate,
		Version:        utils.Or(data.Version, unknownDate),
	}
	if data.LastUpdated != "" {
		rec.LastUpdated = displayDate(data.LastUpdated)
	}

	sum := 0.0
	for _, d := range data.Drugs {
		sum += d.NewPrice
		switch change := d.NewPrice - d.OldPrice; {
		case change > 0:
			rec.PriceIncreases++
		case change < 0:
			rec.PriceDecreases++
		}
		if d.UpdateDate == today {
			rec.UpdatedToday++
		}
	}
	avg := 0.0
	if len(data.Drugs) > 0 {
		avg = sum / float64(len(data.Drugs))
	}
	rec.AveragePrice = strconv.FormatFloat(avg, 'f', 2, 64)

	for _, s := range data.Shortages {
		if s.Status == model.ShortageCritical {
			rec.CriticalShortages++
		}
	}
	return &Result{Success: true, Message: "تم جلب سجلات الموقع بنجاح", Data: rec}
}

func (e *Executor) exportData(ctx context.Context) *Result {
	exp, ok := e.mirror.ExportData(ctx)
	if !ok {
		return &Result{Message: "لا توجد بيانات للتصدير"}
	}
	return &Result{Success: true, Message: "تم تصدير البيانات بنجاح", Data: exp}
}

func (e *Executor) clearData(ctx context.Context) *Result {
	if !e.mirror.ClearAllData(ctx) {
		return &Result{Message: "فشل في مسح البيانات"}
	}
	return &Result{Success: true, Message: "تم مسح جميع البيانات بنجاح"}
}

func (e *Executor) systemInfo(ctx context.Context) *Result {
	stats, ok := e.mirror.GetStats(ctx)
	if !ok {
		return &Result{Message: "لا توجد معلومات متاحة"}
	}
	info := &SystemInfo{
		Version:        stats.Version,
		LastUpdated:    unknownDate,
		TotalDrugs:     stats.TotalDrugs,
		TotalShortages: stats.TotalShortages,
		SecurityStatus: "مؤمن",
		CacheStatus:    "نشط",
	}
	if stats.LastUpdated != "" {
		info.LastUpdated = displayDate(stats.LastUpdated)
	}
	return &Result{Success: true, Message: "تم جلب معلومات النظام بنجاح", Data: info}
}

func (e *Executor) backupData(ctx context.Context) *Result {
	exp, ok := e.mirror.ExportData(ctx)
	if !ok {
		return &Result{Message: "لا توجد بيانات للنسخ الاحتياطي"}
	}
	now := e.now()
	host, _ := os.Hostname()
	return &Result{
		Success: true,
		Message: "تم إنشاء نسخة احتياطية بنجاح",
		Data: &Backup{
			MirrorExport: *exp,
			BackupDate:   utils.ISOTime(now),
			BackupType:   "full",
			SystemInfo: BackupHost{
				Host:      host,
				Timestamp: now.UnixMilli(),
				Version:   exp.Version,
			},
		},
	}
}

// FullBackup collects the mirror export, both pages and all ratings.
func (e *Executor) FullBackup(ctx context.Context) (*FullBackup, error) {
	exp, ok := e.mirror.ExportData(ctx)
	if !ok {
		return nil, code.MirrorEmpty.WithMsg("لا توجد بيانات محلية للنسخ الاحتياطي")
	}

	out := &FullBackup{
		MirrorExport: *exp,
		Ratings: BackupRatings{
			ProductRatings: []model.Rating{},
			WebsiteRatings: []model.Rating{},
		},
		BackupDate: utils.ISOTime(e.now()),
	}
	if e.pages != nil {
		// a failed read still yields the default content
		out.AboutContent, _ = e.pages.GetAbout(ctx)
		out.ContactContent, _ = e.pages.GetContact(ctx)
	} else {
		out.AboutContent = pages.Defaults(pages.About)
		out.ContactContent = pages.Defaults(pages.Contact)
	}

	if e.ratings != nil {
		product, err := e.ratings.GetAllProductRatingsForAdmin(ctx)
		if err != nil {
			logger.Errorf(ctx, "backup product ratings err: %+v", err)
			return nil, code.ExportErr.WithMsg("فشل في إنشاء النسخة الاحتياطية")
		}
		website, err := e.ratings.GetWebsiteRatings(ctx)
		if err != nil {
			logger.Errorf(ctx, "backup website ratings err: %+v", err)
			return nil, code.ExportErr.WithMsg("فشل في إنشاء النسخة الاحتياطية")
		}
		out.Ratings = BackupRatings{ProductRatings: product, WebsiteRatings: website}
	}
	out.TotalProductRatings = len(out.Ratings.ProductRatings)
	out.TotalWebsiteRatings = len(out.Ratings.WebsiteRatings)
	return out, nil
}
