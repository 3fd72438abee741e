package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realtime.log")
	l := NewIsolatedLogger(path)

	l.Info("Hub", "client connected", map[string]interface{}{"user_id": "u1"})
	l.Debug("Hub", "below file level", nil)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "client connected", entry["message"])
	assert.Equal(t, "Hub", entry["module"])
	assert.Equal(t, "u1", entry["details"].(map[string]interface{})["user_id"])
}

func TestNopLogger(t *testing.T) {
	var l ILogger = NewNopLogger()
	assert.NotPanics(t, func() {
		l.Error("Test", "ignored", map[string]interface{}{"error": "boom"})
	})
}
