package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir stands in for testing.T.Chdir (Go 1.24+): it changes the working
// directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "SERVER_PORT", "PORT", "STORE_DRIVER", "CORS_ORIGIN", "UPLOAD_URL_PREFIX"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "worklog", cfg.AppName)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "/uploads/", cfg.Upload.URLPrefix)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxFileBytes)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.False(t, cfg.CacheEnabled())
	assert.True(t, cfg.Migrations.Enabled)
	assert.Contains(t, cfg.Database.URL, "postgres://postgres:@127.0.0.1:5432/work_log")
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("UPLOAD_URL_PREFIX", "files")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, "/files/", cfg.Upload.URLPrefix)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}
