package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drugguide.log")
	Init(&LogConfig{
		Path:       path,
		LogLevel:   "info",
		ServiceEnv: ServiceEnv{Platform: "dwalast", Service: "api", Env: "test"},
	})
	t.Cleanup(func() {
		writer = nil
		Init(&LogConfig{LogLevel: "error"})
	})

	ctx := context.Background()
	Debugf(ctx, "hidden %d", 1)
	Infof(ctx, "imported %d drugs", 2)
	Close()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"imported 2 drugs"`)
	assert.Contains(t, string(raw), `"service":"api"`)
	assert.NotContains(t, string(raw), "hidden")
}
