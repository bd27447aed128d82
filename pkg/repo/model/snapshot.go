package model

import (
	"time"

	"gorm.io/datatypes"
)

// CacheSnapshot is the Read Cache payload. Timestamp is unix milliseconds.
type CacheSnapshot struct {
	Drugs       []Drug `json:"drugs"`
	LastUpdated string `json:"lastUpdated"`
	Timestamp   int64  `json:"timestamp"`
}

// MirrorSnapshot is the Local Mirror payload. It never expires.
type MirrorSnapshot struct {
	Drugs       []LocalDrug     `json:"drugs"`
	Shortages   []LocalShortage `json:"shortages"`
	LastUpdated string          `json:"lastUpdated"`
	Version     string          `json:"version"`
}

type MirrorExport struct {
	MirrorSnapshot
	ExportDate     string `json:"exportDate"`
	TotalDrugs     int    `json:"totalDrugs"`
	TotalShortages int    `json:"totalShortages"`
}

type MirrorStats struct {
	TotalDrugs     int    `json:"totalDrugs"`
	TotalShortages int    `json:"totalShortages"`
	LastUpdated    string `json:"lastUpdated"`
	Version        string `json:"version"`
}

// KVEntry backs the SQL implementation of local storage.
type KVEntry struct {
	Key       string         `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Value     datatypes.JSON `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
