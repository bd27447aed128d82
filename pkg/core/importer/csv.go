package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dwalast/drugguide/pkg/common/uuid"
	"github.com/dwalast/drugguide/pkg/core/drug"
	"github.com/dwalast/drugguide/pkg/repo/model"
)

var requiredHeaders = []string{"name", "newPrice", "oldPrice"}

var numericColumns = map[string]bool{
	"newPrice":               true,
	"oldPrice":               true,
	"averageDiscountPercent": true,
	"expiryWarning":          true,
}

// ValidateCSV checks there is a header and at least one row, and that the
// header names the required columns exactly.
func ValidateCSV(text string) *CSVValidation {
	errs := make([]string, 0)
	rows, err := readCSV(text)
	if err != nil {
		errs = append(errs, "تعذر قراءة ملف CSV: "+err.Error())
	}
	if len(rows) < 2 {
		errs = append(errs, "الملف يجب أن يحتوي على رأس الجدول وسطر واحد على الأقل من البيانات")
	}

	present := map[string]bool{}
	if len(rows) > 0 {
		for _, h := range rows[0] {
			present[h] = true
		}
	}
	missing := make([]string, 0, len(requiredHeaders))
	for _, h := range requiredHeaders {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, "الأعمدة المطلوبة مفقودة: "+strings.Join(missing, ", "))
	}
	return &CSVValidation{Valid: len(errs) == 0, Errors: errs}
}

// CSVToJSON maps each row onto the header names. Known numeric columns are
// coerced (0 when unparsable) and id, no, updateDate and the price change
// are filled in when absent.
func CSVToJSON(text string) ([]model.RawRecord, error) {
	return convertCSV(text, time.Now())
}

func convertCSV(text string, now time.Time) ([]model.RawRecord, error) {
	rows, err := readCSV(text)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.RawRecord{}, nil
	}

	headers := rows[0]
	out := make([]model.RawRecord, 0, len(rows)-1)
	for index, values := range rows[1:] {
		rec := model.RawRecord{"originalOrder": index}
		for i, h := range headers {
			if h == "" || i >= len(values) {
				continue
			}
			v := values[i]
			switch {
			case numericColumns[h]:
				rec[h] = coerceNumber(v)
			case h == "isAvailable":
				rec[h] = strings.EqualFold(v, "true")
			default:
				rec[h] = v
			}
		}

		if s, _ := rec["id"].(string); s == "" {
			rec["id"] = uuid.NewString()
		}
		if s, _ := rec["no"].(string); s == "" {
			rec["no"] = strconv.Itoa(index + 1)
		}
		if s, _ := rec["updateDate"].(string); s == "" {
			rec["updateDate"] = drug.Today(now)
		}

		newPrice, _ := rec["newPrice"].(float64)
		oldPrice, _ := rec["oldPrice"].(float64)
		rec["priceChange"], rec["priceChangePercent"] = drug.PriceChange(newPrice, oldPrice)
		out = append(out, rec)
	}
	return out, nil
}

func coerceNumber(v string) float64 {
	f, ok := drug.ParsePrice(v)
	if !ok {
		return 0
	}
	return f
}

// readCSV tokenizes text, trimming every field and dropping blank rows.
// Quoted fields may hold commas.
func readCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows := make([][]string, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		blank := true
		for i := range record {
			record[i] = strings.Trim(strings.TrimSpace(record[i]), `"`)
			if record[i] != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, record)
		}
	}
}
