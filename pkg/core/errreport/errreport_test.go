package errreport

import (
	"context"
	"fmt"
	"testing"

	"github.com/dwalast/drugguide/pkg/repo/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepsLastTen(t *testing.T) {
	ctx := context.Background()
	r := New(kv.NewMemory())

	for i := 0; i < 13; i++ {
		require.NoError(t, r.Record(ctx, Report{Message: fmt.Sprintf("boom %d", i)}))
	}
	list := r.List(ctx)
	require.Len(t, list, 10)
	assert.Equal(t, "boom 3", list[0].Message)
	assert.Equal(t, "boom 12", list[9].Message)
	assert.NotEmpty(t, list[9].Timestamp)

	require.NoError(t, r.Record(ctx, Report{Message: "x", Timestamp: "2026-01-01T00:00:00.000Z"}))
	assert.Equal(t, "2026-01-01T00:00:00.000Z", r.List(ctx)[9].Timestamp)

	require.NoError(t, r.Clear(ctx))
	assert.Empty(t, r.List(ctx))
}
