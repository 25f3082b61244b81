package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientbook/config"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "clientbook.db", cfg.Store.SQLitePath)
	assert.Equal(t, "restrict", cfg.Store.OnCustomerDelete)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, ".", cfg.Report.Dir)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.env"), []byte("STORE_BACKEND=csv\nDATA_DIR=/from/file\nREPORT_DIR=/file/reports\n"), 0o644))
	t.Setenv("DATA_DIR", "/from/env")

	cfg, err := config.Load(flags(t, "--report-dir", "/flag/reports"))
	require.NoError(t, err)
	assert.Equal(t, config.BackendCSV, cfg.Store.Backend, "file over default")
	assert.Equal(t, "/from/env", cfg.Store.DataDir, "env over file")
	assert.Equal(t, "/flag/reports", cfg.Report.Dir, "flag over file")
}

func TestLoadExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "prod.env")
	require.NoError(t, os.WriteFile(path, []byte("ON_CUSTOMER_DELETE=cascade\n"), 0o644))

	cfg, err := config.Load(flags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "cascade", cfg.Store.OnCustomerDelete)

	_, err = config.Load(flags(t, "--config", filepath.Join(t.TempDir(), "absent.env")))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := config.Load(flags(t, "--backend", "mongo"))
	assert.Error(t, err)
}

func TestLoadReadsOnlyConfigEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("STORE_BACKEND: csv\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"STORE_BACKEND": "postgres"}`), 0o644))

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte("STORE_BACKEND=csv\n"), 0o644))
	cfg, err = config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, config.BackendCSV, cfg.Store.Backend)
}
