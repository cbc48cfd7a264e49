package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	unsetEnv(t, "COSMOS_BACKEND", "COSMOS_HOST", "COSMOS_SETTINGS_FILE", "COSMOS_MAX_RETRIES",
		"COSMOS_REQUEST_TIMEOUT", "MONGODB_CATALOG_DATABASE", "AUDIT_STREAM", "AUDIT_RETRIES", "AUDIT_RETRY_DELAY", "ADMIN_HTTP_ADDR", "REDIS_URL")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendREST, cfg.Backend)
	assert.Equal(t, int32(3), cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "cosmos_catalog", cfg.Mongo.CatalogDatabase)
	assert.Equal(t, "cosmos-admin:audit", cfg.Audit.Stream)
	assert.Equal(t, 1, cfg.Audit.Retries)
	assert.Equal(t, 100*time.Millisecond, cfg.Audit.RetryDelay)
	assert.Equal(t, "localhost:3000", cfg.Admin.Addr)
	assert.False(t, cfg.Audit.Enabled())
}

func TestLoadConfig_EnvironmentWinsOverSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"host: https://file.documents.azure.com:443/\nmaster_key: ZmlsZQ==\ndatabase_id: FileDB\ncollection_id: FileColl\n"), 0o600))

	unsetEnv(t, "COSMOS_MASTER_KEY", "COSMOS_DATABASE_ID", "COSMOS_COLLECTION_ID", "COSMOS_REQUEST_TIMEOUT")
	t.Setenv("COSMOS_SETTINGS_FILE", path)
	t.Setenv("COSMOS_HOST", "https://env.documents.azure.com:443/")
	t.Setenv("COSMOS_BACKEND", "REST")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://env.documents.azure.com:443/", cfg.Host)
	assert.Equal(t, "ZmlsZQ==", cfg.MasterKey)
	assert.Equal(t, "FileDB", cfg.DatabaseID)
	assert.Equal(t, "FileColl", cfg.CollectionID)
	assert.Equal(t, BackendREST, cfg.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSettingsFile(t *testing.T) {
	t.Setenv("COSMOS_SETTINGS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"memory", func(c *Config) {}, false},
		{"rest ok", func(c *Config) {
			c.Backend, c.Host, c.MasterKey = BackendREST, "https://localhost:8081/", "c2VjcmV0"
		}, false},
		{"rest missing host", func(c *Config) { c.Backend, c.MasterKey = BackendREST, "c2VjcmV0" }, true},
		{"rest relative host", func(c *Config) {
			c.Backend, c.Host, c.MasterKey = BackendREST, "localhost", "c2VjcmV0"
		}, true},
		{"rest bad key", func(c *Config) {
			c.Backend, c.Host, c.MasterKey = BackendREST, "https://localhost:8081/", "not base64!"
		}, true},
		{"mongo missing uri", func(c *Config) { c.Backend, c.Mongo.URI = BackendMongo, "" }, true},
		{"mongo ok", func(c *Config) { c.Backend = BackendMongo }, false},
		{"unknown backend", func(c *Config) { c.Backend = "sqlite" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient(AuditConfig{RedisURL: "redis://localhost:6379/2"})
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 2, client.Options().DB)
	assert.Equal(t, 3, client.Options().MaxRetries)

	_, err = NewRedisClient(AuditConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}
