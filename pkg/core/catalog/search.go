package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/repo/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Search filters by a case-insensitive substring of name or number and
// orders the result. Names sort with Arabic collation. The input slice is
// not modified.
func Search(drugs []model.Drug, term string, by SortBy) []model.Drug {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Drug, 0, len(drugs))
	for _, d := range drugs {
		if term == "" ||
			strings.Contains(strings.ToLower(d.Name), term) ||
			strings.Contains(strings.ToLower(d.No), term) {
			out = append(out, d)
		}
	}

	var less func(a, b *model.Drug) bool
	switch by {
	case SortPrice:
		less = func(a, b *model.Drug) bool { return a.NewPrice < b.NewPrice }
	case SortChange:
		less = func(a, b *model.Drug) bool {
			return math.Abs(a.PriceChangePercent) > math.Abs(b.PriceChangePercent)
		}
	case SortName:
		c := collate.New(language.Arabic)
		less = func(a, b *model.Drug) bool { return c.CompareString(a.Name, b.Name) < 0 }
	default:
		less = func(a, b *model.Drug) bool { return a.OriginalOrder < b.OriginalOrder }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

// Paginate returns the 1-based page of size items and the page count.
func Paginate(drugs []model.Drug, page, size int) ([]model.Drug, int) {
	if size <= 0 {
		size = constant.ItemsPerPage
	}
	pages := (len(drugs) + size - 1) / size
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(drugs) {
		return []model.Drug{}, pages
	}
	end := min(start+size, len(drugs))
	return drugs[start:end], pages
}
