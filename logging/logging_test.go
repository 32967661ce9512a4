package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"severe", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_WritesToConfiguredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aozan.log")
	conf := config.FromMap(map[string]string{KeyLevel: "warn", KeyPath: path})

	logger, closer, err := New(conf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "step", "sync")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "msg=shown step=sync")
}

func TestNew_InvalidSettings(t *testing.T) {
	_, _, err := New(config.FromMap(map[string]string{KeyLevel: "loud"}))
	assert.Error(t, err)

	_, _, err = New(config.FromMap(map[string]string{KeyFormat: "xml"}))
	assert.Error(t, err)

	_, _, err = New(config.FromMap(map[string]string{KeyPath: filepath.Join(t.TempDir(), "missing", "a.log")}))
	assert.Error(t, err)
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestForRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ForRun(logger, rundata.NewRunID("run1")).Info("start")
	assert.Contains(t, buf.String(), "run=run1")
	assert.NotContains(t, buf.String(), "original_run")

	buf.Reset()
	ForRun(logger, rundata.RunID{ID: "A1", OriginalID: "run1"}).Info("start")
	assert.Contains(t, buf.String(), "run=A1 original_run=run1")

	assert.NotPanics(t, func() { ForRun(nil, rundata.NewRunID("x")).Info("dropped") })
	assert.NotNil(t, OrDiscard(nil))
	assert.Same(t, logger, OrDiscard(logger))
}
