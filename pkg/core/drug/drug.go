// Package drug holds the record rules shared by listing and import: which
// raw RemoteStore entries count as drugs, how prices are read, and how a
// raw entry becomes a display record.
package drug

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dwalast/drugguide/pkg/repo/model"
)

// DateLayout renders dates the way the catalog displays them (day/month/year).
const DateLayout = "2/1/2006"

var placeholderNames = map[string]struct{}{
	"aaa":   {},
	"test":  {},
	"تجربة": {},
}

const blockedNameFragment = "illegal import"

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice reads a price the lenient way listing does: falsy values are 0,
// the first "," is a decimal separator and only the leading number counts.
// ok is false when nothing numeric can be read.
func ParsePrice(v any) (price float64, ok bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return 0, true
	case bool:
		if !t {
			return 0, true
		}
		return math.NaN(), false
	case float64:
		if math.IsNaN(t) {
			return 0, true
		}
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		if t == "" {
			return 0, true
		}
		s = t
	default:
		s = fmt.Sprint(t)
	}

	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	m := leadingNumber.FindString(s)
	if m == "" {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN(), false
	}
	return f, true
}

// NumericKey parses a mapping key as a finite number. NaN and the
// infinities do not count as entry keys.
func NumericKey(k string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(k), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsValidName rejects blank, placeholder and too-short names.
func IsValidName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if utf8.RuneCountInString(n) < 2 {
		return false
	}
	if _, ok := placeholderNames[n]; ok {
		return false
	}
	return !strings.Contains(n, blockedNameFragment)
}

// IsValid reports whether a raw entry may be listed.
func IsValid(raw model.RawRecord) bool {
	if raw == nil {
		return false
	}
	name, ok := raw["name"].(string)
	if !ok || !IsValidName(name) {
		return false
	}
	newPrice, okNew := ParsePrice(raw["newPrice"])
	oldPrice, okOld := ParsePrice(raw["oldPrice"])
	if !okNew || !okOld {
		return false
	}
	return newPrice > 0 || oldPrice > 0
}

// Round2 rounds half up to two decimals.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// PriceChange returns the absolute and percent change from old to new. The
// percent is 0 when there is no old price.
func PriceChange(newPrice, oldPrice float64) (change, percent float64) {
	change = newPrice - oldPrice
	if oldPrice > 0 {
		percent = Round2(change / oldPrice * 100)
	}
	return change, percent
}

// Normalize turns a valid raw entry into a display record. order is the
// entry's position among accepted records.
func Normalize(key string, raw model.RawRecord, order int) model.Drug {
	newPrice, _ := ParsePrice(raw["newPrice"])
	oldPrice, _ := ParsePrice(raw["oldPrice"])
	if newPrice <= 0 {
		newPrice = oldPrice
	}
	if oldPrice <= 0 {
		oldPrice = newPrice
	}
	change, percent := PriceChange(newPrice, oldPrice)

	name, _ := raw["name"].(string)
	d := model.Drug{
		ID:                 key,
		Name:               strings.TrimSpace(name),
		NewPrice:           newPrice,
		OldPrice:           oldPrice,
		No:                 stringOr(raw["no"], key),
		UpdateDate:         stringOr(raw["updateDate"], ""),
		PriceChange:        change,
		PriceChangePercent: percent,
		OriginalOrder:      order,
	}
	if v, ok := raw["activeIngredient"].(string); ok && v != "" {
		d.ActiveIngredient = &v
	}
	if v, ok := number(raw["averageDiscountPercent"]); ok {
		d.AverageDiscountPercent = &v
	}
	d.DrugDetails = details(raw)
	return d
}

func details(raw model.RawRecord) model.DrugDetails {
	str := func(k string) *string {
		if v, ok := raw[k].(string); ok && v != "" {
			return &v
		}
		return nil
	}
	dd := model.DrugDetails{
		Manufacturer:      str("manufacturer"),
		Category:          str("category"),
		Description:       str("description"),
		Dosage:            str("dosage"),
		SideEffects:       str("sideEffects"),
		Contraindications: str("contraindications"),
		Interactions:      str("interactions"),
		StorageConditions: str("storageConditions"),
		ImageURL:          str("imageUrl"),
		Barcode:           str("barcode"),
		PharmacyNotes:     str("pharmacyNotes"),
	}
	if v, ok := number(raw["expiryWarning"]); ok {
		dd.ExpiryWarning = &v
	}
	if v, ok := raw["isAvailable"].(bool); ok {
		dd.IsAvailable = &v
	}
	return dd
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func stringOr(v any, def string) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	}
	return def
}

// Today formats now with DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
