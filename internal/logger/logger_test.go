package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/config"
)

func TestInit_JSONWithRoomField(t *testing.T) {
	require.NoError(t, Init(config.LogConfig{Level: "debug", Format: "json"}))
	var buf bytes.Buffer
	SetOutput(&buf)

	WithPlayer("ABC123", "p1").Info("🃏 出牌")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ABC123", entry["room"])
	assert.Equal(t, "p1", entry["player"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, logrus.DebugLevel, L().GetLevel())
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	require.NoError(t, Init(config.LogConfig{Level: "info", File: path}))
	t.Cleanup(Close)

	LogError("存储失败: %s", "boom")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "存储失败: boom")
}

func TestInit_InvalidLevel(t *testing.T) {
	assert.Error(t, Init(config.LogConfig{Level: "loud"}))
}

func TestLogPanic(t *testing.T) {
	require.NoError(t, Init(config.LogConfig{Level: "info", Format: "json"}))
	var buf bytes.Buffer
	SetOutput(&buf)

	LogPanic("kaboom")
	assert.Contains(t, buf.String(), "panic: kaboom")
	assert.Contains(t, buf.String(), "stack")
}
