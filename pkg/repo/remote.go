package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwalast/drugguide/pkg/common/code"
)

// Query narrows a collection read. Zero value means the whole node.
type Query struct {
	OrderBy string
	EqualTo string
	Shallow bool
}

// RemoteStore is the hosted document database. Paths are slash separated
// and relative to the database root, without the ".json" suffix. A missing
// node decodes as JSON null.
type RemoteStore interface {
	Get(ctx context.Context, path string, query *Query, out any) error
	Put(ctx context.Context, path string, body any) error
	Post(ctx context.Context, path string, body any) (string, error)
	Patch(ctx context.Context, path string, body any) error
	Delete(ctx context.Context, path string) error
	Ping(ctx context.Context) error
}

// StatusError reports a non-2xx answer from the RemoteStore.
type StatusError struct {
	Method string
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: http code: %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) Unwrap() error {
	return code.RPCHttpCodeErr
}

// HTTPStatus returns the status carried by err, 0 when it is not a StatusError.
func HTTPStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
