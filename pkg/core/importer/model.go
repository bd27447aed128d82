package importer

import (
	"fmt"
)

type Mode string

const (
	// ModeReplace overwrites the remote drug mapping with the import.
	ModeReplace Mode = "replace"
	// ModeMerge overlays the import on the remote mapping. Keys missing
	// from the file are kept.
	ModeMerge Mode = "merge"
)

func (m Mode) Valid() bool {
	return m == ModeReplace || m == ModeMerge
}

type ImportResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	ImportedCount int      `json:"importedCount"`
	ErrorCount    int      `json:"errorCount"`
	Errors        []string `json:"errors"`
}

// Failed builds a result for a file that never reached validation.
func Failed(message string, errs ...string) *ImportResult {
	if errs == nil {
		errs = []string{}
	}
	return &ImportResult{
		Message:    message,
		ErrorCount: len(errs),
		Errors:     errs,
	}
}

func ImportedMessage(imported, failed int) string {
	msg := fmt.Sprintf("تم استيراد %d دواء بنجاح", imported)
	if failed > 0 {
		msg += fmt.Sprintf(" مع %d خطأ", failed)
	}
	return msg
}

type CSVValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ExportFile is the simple export format. Drugs is the remote mapping as
// stored.
type ExportFile struct {
	ExportDate string `json:"exportDate"`
	DrugCount  int    `json:"drugCount"`
	Drugs      any    `json:"drugs"`
}

type ImportReq struct {
	Mode Mode `form:"mode" json:"mode"`
}
