package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	l := Component(NewWithWriter(&buf, "info", loc), "reconcile")
	l.Info("run_completed", zap.Int("orders", 3))
	l.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "run_completed", entry["msg"])
	assert.Equal(t, "reconcile", entry["component"])
	assert.Equal(t, float64(3), entry["orders"])

	ts, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	_, nyOffset := time.Now().In(loc).Zone()
	assert.Equal(t, nyOffset, offset)
}

func TestNewWithWriterUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "loud", nil)

	l.Debug("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
