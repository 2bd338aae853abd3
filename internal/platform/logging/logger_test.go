package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("loud"))
}

func TestNew_WritesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:          LevelInfo,
		ServiceName:    "racectl",
		ServiceVersion: "v1",
		Environment:    "dev",
		Output:         &buf,
	})

	logger.Info("race locked", "race_id", "race-1", "locked_teams", 3)
	logger.DebugContext(context.Background(), "dropped")
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "race locked", entry["msg"])
	assert.Equal(t, "racectl", entry["service"])
	assert.Equal(t, "race-1", entry["race_id"])
	assert.EqualValues(t, 3, entry["locked_teams"])
}

func TestLogger_FieldsFromArgs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "settlement")

	logger.WarnContext(context.Background(), "forced settle", "race_id", "race-1", "error", errors.New("boom"), "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "settlement", fields["component"])
	assert.Equal(t, "race-1", fields["race_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.Contains(t, fields, "dangling")
}

func TestSetMirror_ReceivesEnabledEntries(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, _ ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.DebugContext(context.Background(), "skipped")
	logger.ErrorContext(context.Background(), "settlement sweep failed", "error", errors.New("boom"))

	require.Equal(t, []string{"error:settlement sweep failed"}, got)
}
