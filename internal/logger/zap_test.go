package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestReadLoggerConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_FILE", "")

	c := ReadLoggerConfig()
	assert.Equal(t, zapcore.DebugLevel, c.level())
	assert.False(t, c.FileEnabled())

	assert.Equal(t, zapcore.InfoLevel, (&LoggerConfig{Level: "loud"}).level())
}

func TestCreateLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.log")
	c := &LoggerConfig{Level: "warn", Format: "json", File: path}

	l, err := c.CreateLogger()
	require.NoError(t, err)
	l.Info("dropped below level")
	l.Warn("funded wallet running low", zap.Int("payouts_remaining", 3))
	_ = l.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"payouts_remaining":3`)
	assert.False(t, strings.Contains(string(content), "dropped below level"))
}
