package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"tableorder/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToStdoutAndFile(t *testing.T) {
	// Given
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	// When
	logger, closer, err := logging.New(logging.Config{Service: "tableorder", FilePath: path, Level: "debug"}, &stdout)
	require.NoError(t, err)
	logger.Debug("order submitted", "orderId", "42")
	require.NoError(t, closer.Close())

	// Then
	var record map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &record))
	assert.Equal(t, "order submitted", record["msg"])
	assert.Equal(t, "tableorder", record["service"])
	assert.Equal(t, "42", record["orderId"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "order submitted")
}

func TestNew_FiltersByLevel(t *testing.T) {
	var stdout bytes.Buffer

	logger, _, err := logging.New(logging.Config{Level: "warn"}, &stdout)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)

	_, err = logging.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestFromCtx(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	scoped := fallback.With("requestId", "r-1")

	assert.Same(t, fallback, logging.FromCtx(t.Context(), fallback))
	assert.Same(t, scoped, logging.FromCtx(logging.WithCtx(t.Context(), scoped), fallback))
}
