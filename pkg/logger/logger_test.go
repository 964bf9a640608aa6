package logger

import (
	"coursegate/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		level string
		want  string
	}{
		{"debug mode", "debug", "", "debug"},
		{"release mode", "release", "", "info"},
		{"explicit level wins", "debug", "warn", "warn"},
		{"unknown level falls back", "release", "loud", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
			assert.Equal(t, tt.want, Level(cfg).String())
		})
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	old := Log
	t.Cleanup(func() { Log = old })

	file := filepath.Join(t.TempDir(), "coursegate.log")
	InitLogger(&config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{File: file, MaxSizeMB: 1},
	})
	Log.Info("progress update failed", zap.String("chapter_id", "c1"))
	Log.Debug("dropped below level")
	_ = Log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chapter_id":"c1"`)
	assert.NotContains(t, string(data), "dropped below level")
}
