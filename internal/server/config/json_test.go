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
		"endpoint_addr_http": "www.example:9000",
		"store":              "memory",
		"database_dsn":       "postgres://db",
		"mongo_uri":          "mongodb://mongo",
		"mongo_database":     "market",
		"access_secret":      "my_secret_key",
		"refresh_secret":     "my_refresh_key",
		"access_token_ttl":   "1m",
		"refresh_token_ttl":  "3m",
		"search_timeout":     "2s",
		"environment":        "production",
		"log_level":          "warn",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "memory", cfg.Store)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "mongodb://mongo", cfg.MongoURI)
		assert.Equal(t, "market", cfg.MongoDatabase)
		assert.Equal(t, "my_secret_key", cfg.AccessSecret)
		assert.Equal(t, "my_refresh_key", cfg.RefreshSecret)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenTTL)
		assert.Equal(t, 2*time.Second, cfg.SearchTimeout)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"store": "mongo"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "mongo", cfg.Store)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 7*24*time.Hour, cfg.AccessTokenTTL)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP: "defaults:1234",
			Store:            "postgres",
			AccessSecret:     "key",
			AccessTokenTTL:   2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres", cfg.Store)
		assert.Equal(t, "key", cfg.AccessSecret)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenTTL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
