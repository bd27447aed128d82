package drug

import (
	"fmt"
	"strings"
)

// CheckImportEntry applies the import rules to one entry and returns the
// message to report for it, empty when the entry is accepted. Import is
// stricter than listing about newPrice: it must be a JSON number >= 0.
func CheckImportEntry(key string, v any) string {
	entry, ok := v.(map[string]any)
	if !ok || entry == nil {
		return fmt.Sprintf("السطر %s: بيانات غير صالحة", key)
	}
	name, _ := entry["name"].(string)
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("السطر %s: اسم الدواء مطلوب", key)
	}
	price, ok := jsonNumber(entry["newPrice"])
	if !ok || price < 0 {
		return fmt.Sprintf("السطر %s: السعر الجديد غير صالح", key)
	}
	return ""
}

func jsonNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
