package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the file", func(t *testing.T) {
		// Given: a config file with a sqlite store
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
storage:
  driver: sqlite
  game-ttl: 1h
sqlite-storage-path: /tmp/games.db
websocket:
  write-timeout: 3s
  read-limit: 1024
  allowed-origins: ["http://localhost:3000"]
`)

		// When: it is loaded
		conf, err := Load(path)

		// Then: every value is taken from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, DriverSQLite, conf.Storage.Driver)
		assert.Equal(t, time.Hour, conf.Storage.GameTTL)
		assert.Equal(t, "/tmp/games.db", conf.SQLiteStoragePath)
		assert.Equal(t, 3*time.Second, conf.WebSocket.WriteTimeout)
		assert.Equal(t, int64(1024), conf.WebSocket.ReadLimit)
		assert.Equal(t, []string{"http://localhost:3000"}, conf.WebSocket.AllowedOrigins)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Falls back to the environment", func(t *testing.T) {
		// Given: no file and a few variables
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("REDIS_HOST", "cache")
		t.Setenv("HTTP_PORT", "7000")

		// When: a missing path is loaded
		conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		// Then: env and defaults fill the config
		require.NoError(t, err)
		assert.Equal(t, DriverMemory, conf.Storage.Driver)
		assert.Equal(t, "7000", conf.HTTPPort)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 24*time.Hour, conf.Storage.GameTTL)
	})

	t.Run("Rejects an unknown driver", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  driver: mongo\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrUnknownDriver)
		assert.Panics(t, func() { MustLoad(path) })
	})
}
