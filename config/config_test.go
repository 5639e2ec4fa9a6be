package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "siser", cfg.Backend)
	assert.Equal(t, "library_data.rec", cfg.DataFile)
	assert.Equal(t, 14, cfg.LoanDays)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "library.log", cfg.LogFile)
	assert.False(t, cfg.IsProduction)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yml")
	yml := "backend: legacy\nloan_days: 21\nlog_level: debug\nis_production: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Backend)
	assert.Equal(t, "library_data.txt", cfg.DataFile, "default follows the backend")
	assert.Equal(t, 21, cfg.LoanDays)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.IsProduction)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yml")
	require.NoError(t, os.WriteFile(path, []byte("backend: legacy\ndata_file: a.txt\n"), 0o644))

	t.Setenv("LIBCAT_BACKEND", "sqlite")
	t.Setenv("LIBCAT_DATA_FILE", "books.db")
	t.Setenv("LIBCAT_LOAN_DAYS", "7")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "books.db", cfg.DataFile)
	assert.Equal(t, 7, cfg.LoanDays)
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "library.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LIBCAT_BACKEND=bolt\n"), 0o644))
	// godotenv never overrides variables that are already set, so make sure
	// the test owns this one and restores it afterwards.
	t.Setenv("LIBCAT_BACKEND", "")
	require.NoError(t, os.Unsetenv("LIBCAT_BACKEND"))

	cfg, err := Load(filepath.Join(dir, "missing.yml"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "bolt", cfg.Backend)
	assert.Equal(t, "library.bolt", cfg.DataFile)
}

func TestInitValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown backend", Config{Backend: "csv"}},
		{"loan too long", Config{LoanDays: 400}},
		{"negative loan", Config{LoanDays: -1}},
		{"bad level", Config{LogLevel: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			assert.Error(t, Init(&cfg))
		})
	}
}

func TestInitNormalizesBackend(t *testing.T) {
	cfg := Config{Backend: " SQLite "}
	require.NoError(t, Init(&cfg))
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "library.db", cfg.DataFile)
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yml")
	require.NoError(t, os.WriteFile(path, []byte("loan_days: [oops\n"), 0o644))

	_, err := Load(path, filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}
