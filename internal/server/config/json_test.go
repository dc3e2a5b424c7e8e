package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":    "www.example:9000",
		"database_dsn":          "vault.db",
		"secret_key":            "my_secret_key",
		"key_encryption_secret": "kek",
		"log_level":             "warn",
		"default_page_size":     10,
		"max_page_size":         40,
		"share_token_bytes":     16,
		"task_workers":          3,
		"task_queue_size":       64,
		"task_timeout":          "5s",
		"update_retry_attempts": 9,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "vault.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "kek", cfg.KeyEncryptionSecret)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 10, cfg.DefaultPageSize)
		assert.Equal(t, 40, cfg.MaxPageSize)
		assert.Equal(t, 16, cfg.ShareTokenBytes)
		assert.Equal(t, 3, cfg.TaskWorkers)
		assert.Equal(t, 64, cfg.TaskQueueSize)
		assert.Equal(t, 5*time.Second, cfg.TaskTimeout)
		assert.Equal(t, 9, cfg.UpdateRetryAttempts)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "debug"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 10*time.Second, cfg.TaskTimeout)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrGRPC: "defaults:1234",
			DatabaseDSN:      "vault.db",
			SecretKey:        "key",
			TaskTimeout:      2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "vault.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.TaskTimeout)
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}

func TestApplyJSONFile(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{"database_dsn": "postgres://x", "max_page_size": 10})

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, ApplyJSONFile(cfg, path))
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, 10, cfg.MaxPageSize)
	assert.Equal(t, 20, cfg.DefaultPageSize)

	assert.Error(t, ApplyJSONFile(cfg, filepath.Join(t.TempDir(), "absent.json")))
}
