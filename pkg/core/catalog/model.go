package catalog

import "github.com/dwalast/drugguide/pkg/repo/model"

type FetchResult struct {
	Drugs             []model.Drug `json:"drugs"`
	LastUpdated       string       `json:"lastUpdated"`
	CriticalShortages int          `json:"criticalShortages"`
	FromCache         bool         `json:"fromCache"`
	Attempts          int          `json:"attempts"`
}

type SortBy string

const (
	SortOriginal SortBy = "original"
	SortPrice    SortBy = "price"
	SortChange   SortBy = "change"
	SortName     SortBy = "name"
)

type ListReq struct {
	Refresh bool   `form:"refresh"`
	Query   string `form:"q"`
	Sort    SortBy `form:"sort"`
	Page    int    `form:"page"`
	Size    int    `form:"size"`
}

type ListResp struct {
	Drugs             []model.Drug `json:"drugs"`
	Total             int          `json:"total"`
	Pages             int          `json:"pages"`
	LastUpdated       string       `json:"lastUpdated"`
	CriticalShortages int          `json:"criticalShortages"`
	FromCache         bool         `json:"fromCache"`
}
