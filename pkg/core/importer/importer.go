// Package importer ingests drug files into the RemoteStore. Entries are
// checked one by one; the valid ones are written in a single request.
package importer

import (
	"context"

	"github.com/dwalast/drugguide/pkg/repo/model"
)

type Service interface {
	ProcessImportData(ctx context.Context, data any, mode Mode) *ImportResult
	ImportFile(ctx context.Context, filename string, content []byte, mode Mode) *ImportResult
	// ImportFromRemote runs the current remote drug mapping back through
	// the pipeline, dropping entries that no longer pass.
	ImportFromRemote(ctx context.Context) *ImportResult
	ExportToFile(ctx context.Context) ([]byte, error)
	// ImportBackupToMirror replaces the Local Mirror with a mirror export
	// and writes each usable drug back to the RemoteStore.
	ImportBackupToMirror(ctx context.Context, content []byte) *ImportResult

	UpdateDrugInfo(ctx context.Context, drugID string, updates model.RawRecord) error
	AddDrug(ctx context.Context, drug model.RawRecord) (string, error)
	DeleteDrug(ctx context.Context, drugID string) error
}
