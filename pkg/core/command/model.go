package command

import (
	"github.com/dwalast/drugguide/pkg/core/pages"
	"github.com/dwalast/drugguide/pkg/repo/model"
)

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Records struct {
	TotalDrugs        int    `json:"totalDrugs"`
	TotalShortages    int    `json:"totalShortages"`
	CriticalShortages int    `json:"criticalShortages"`
	AveragePrice      string `json:"averagePrice"`
	PriceIncreases    int    `json:"priceIncreases"`
	PriceDecreases    int    `json:"priceDecreases"`
	UpdatedToday      int    `json:"updatedToday"`
	LastUpdated       string `json:"lastUpdated"`
	Version           string `json:"version"`
}

type SystemInfo struct {
	Version        string `json:"version"`
	LastUpdated    string `json:"lastUpdated"`
	TotalDrugs     int    `json:"totalDrugs"`
	TotalShortages int    `json:"totalShortages"`
	SecurityStatus string `json:"securityStatus"`
	CacheStatus    string `json:"cacheStatus"`
}

type BackupHost struct {
	Host      string `json:"host"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}

type Backup struct {
	model.MirrorExport
	BackupDate string     `json:"backupDate"`
	BackupType string     `json:"backupType"`
	SystemInfo BackupHost `json:"systemInfo"`
}

type BackupRatings struct {
	ProductRatings []model.Rating `json:"productRatings"`
	WebsiteRatings []model.Rating `json:"websiteRatings"`
}

// FullBackup is the admin backup file: the mirror export plus page content
// and every rating.
type FullBackup struct {
	model.MirrorExport
	AboutContent        pages.Content `json:"aboutContent"`
	ContactContent      pages.Content `json:"contactContent"`
	Ratings             BackupRatings `json:"ratings"`
	BackupDate          string        `json:"backupDate"`
	TotalProductRatings int           `json:"totalProductRatings"`
	TotalWebsiteRatings int           `json:"totalWebsiteRatings"`
}
