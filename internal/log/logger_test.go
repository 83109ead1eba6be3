package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentStorage, JSON: true, Output: &buf})

	logger.Info("saved", FieldCount, 3)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "saved", rec["msg"])
	assert.Equal(t, ComponentStorage, rec[FieldComponent])
	assert.EqualValues(t, 3, rec[FieldCount])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())

	want := New(DefaultConfig()).WithComponent(ComponentHTTP)
	got := FromContext(NewContext(context.Background(), want))
	assert.Same(t, want, got)
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentApp, JSON: true, Output: &buf}))

	sl.LogError(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpCreate, NewFields().WithRecord("transaction", "t-1"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "disk full", rec[FieldError])
	assert.Equal(t, ComponentStorage, rec[FieldComponent])
	assert.Equal(t, "t-1", rec[FieldRecordID])
	assert.Equal(t, OpCreate, rec[FieldOperation])
}
