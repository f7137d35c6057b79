package config

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/registry"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Z3-2", cfg.Sheets.Mapping)
	assert.Equal(t, "Z10", cfg.Sheets.Registry)
	assert.Equal(t, 1.0, cfg.Tolerance)
	assert.Equal(t, mapping.DefaultLayout(), cfg.Layout())

	tables, err := cfg.MappingTables()
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Nil(t, cfg.RegistryLookup())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tolerance: 0.5
anomalies:
  first_row: 8
  last_row: 40
registry:
  timeout: 5s
storage:
  output_dir: "reports"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Tolerance)
	assert.Equal(t, 8, cfg.AnomalyScan().FirstRow)
	assert.Equal(t, 40, cfg.AnomalyScan().LastRow)
	assert.Equal(t, "Z3-5", cfg.AnomalyScan().Sheet)
	assert.Equal(t, 5*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, "Z7", cfg.ScoringRules().CrossCheckSheet)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Sheets, cfg.Sheets)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tolerance: [1"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{
		"DATABASE_URL":      "postgres://localhost/audit",
		"REGISTRY_APP_CODE": "code",
		"REGISTRY_ENABLED":  "true",
		"AUDIT_OUTPUT_DIR":  "/tmp/out",
	})))
	assert.Equal(t, "postgres://localhost/audit", cfg.Storage.DatabaseURL)
	assert.True(t, cfg.Registry.Enabled)
	assert.Equal(t, "/tmp/out", cfg.Storage.OutputDir)
	require.NoError(t, cfg.Validate())

	_, cached := cfg.RegistryLookup().(*registry.CachedLookup)
	assert.True(t, cached)

	cfg.Registry.CacheTTL = 0
	_, direct := cfg.RegistryLookup().(*registry.Client)
	assert.True(t, direct)

	assert.Error(t, Default().ApplyEnv(env(map[string]string{"REGISTRY_ENABLED": "maybe"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"rows out of order", func(c *Config) { c.Anomalies.FirstRow, c.Anomalies.LastRow = 49, 7 }},
		{"zero column", func(c *Config) { c.Anomalies.DiffColumn = 0 }},
		{"three cross-check cells", func(c *Config) { c.Scoring.CrossCheckCells = []string{"I4", "I5", "J4"} }},
		{"one basic info cell", func(c *Config) { c.Scoring.BasicInfoCells = []string{"A7"} }},
		{"no mapping sheet", func(c *Config) { c.Sheets.Mapping = "" }},
		{"registry without code", func(c *Config) { c.Registry.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMappingTables_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`{
  balance_sheet: [
    # clash with 货币资金
    { key: "交易性金融资产", aliases: ["货币资金"] }
  ]
}`), 0644))

	cfg := Default()
	cfg.Mapping.OverridesFile = path
	_, err := cfg.MappingTables()
	var cfgErr *mapping.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "got %v", err)
}
