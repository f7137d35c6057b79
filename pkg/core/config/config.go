// Package config loads the audit run configuration: config/audit.yaml with
// environment overrides.
package config

import (
	"audit_workpaper/pkg/core/mapping"
	"audit_workpaper/pkg/core/reconcile"
	"audit_workpaper/pkg/core/registry"
	"audit_workpaper/pkg/core/scoring"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is where the CLI and the API server look for the YAML file.
const DefaultPath = "config/audit.yaml"

type Config struct {
	Sheets    SheetConfig    `yaml:"sheets"`
	Tolerance float64        `yaml:"tolerance"`
	Anomalies AnomalyConfig  `yaml:"anomalies"`
	Scoring   ScoringConfig  `yaml:"scoring"`
	Registry  RegistryConfig `yaml:"registry"`
	Storage   StorageConfig  `yaml:"storage"`
	Mapping   MappingConfig  `yaml:"mapping"`
	Server    ServerConfig   `yaml:"server"`
}

// SheetConfig names the workpaper sheets.
type SheetConfig struct {
	Mapping   string `yaml:"mapping" json:"mapping"`       // Z3-2
	BasicInfo string `yaml:"basic_info" json:"basic_info"` // Z3-4
	Notes     string `yaml:"notes" json:"notes"`           // Z3-5
	Check     string `yaml:"check" json:"check"`           // Z7
	Registry  string `yaml:"registry" json:"registry"`     // Z10
	Cover     string `yaml:"cover" json:"cover"`           // 首页
}

type AnomalyConfig struct {
	FirstRow   int `yaml:"first_row" json:"first_row"`
	LastRow    int `yaml:"last_row" json:"last_row"`
	NameColumn int `yaml:"name_column" json:"name_column"`
	DiffColumn int `yaml:"diff_column" json:"diff_column"`
}

type ScoringConfig struct {
	CrossCheckCells   []string `yaml:"cross_check_cells" json:"cross_check_cells"`
	CrossCheckMarkers []string `yaml:"cross_check_markers" json:"cross_check_markers"`
	BasicInfoCells    []string `yaml:"basic_info_cells" json:"basic_info_cells"`
}

type RegistryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	AppCode  string        `yaml:"app_code"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type StorageConfig struct {
	DatabaseURL string `yaml:"database_url"`
	ReportDir   string `yaml:"report_dir"`
	OutputDir   string `yaml:"output_dir"`
}

type MappingConfig struct {
	CurrentColumn int    `yaml:"current_column"`
	PriorColumn   int    `yaml:"prior_column"`
	OverridesFile string `yaml:"overrides_file"` // optional HJSON alias overrides
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a complete working configuration for the standard
// workpaper template.
func Default() *Config {
	layout := mapping.DefaultLayout()
	scan := reconcile.DefaultAnomalyScan()
	rules := scoring.DefaultRules()
	return &Config{
		Sheets: SheetConfig{
			Mapping:   layout.Sheet,
			BasicInfo: rules.BasicInfoSheet,
			Notes:     scan.Sheet,
			Check:     rules.CrossCheckSheet,
			Registry:  registry.DefaultSheet,
			Cover:     registry.DefaultCoverSheet,
		},
		Tolerance: reconcile.DefaultTolerance,
		Anomalies: AnomalyConfig{
			FirstRow:   scan.FirstRow,
			LastRow:    scan.LastRow,
			NameColumn: scan.NameColumn,
			DiffColumn: scan.DiffColumn,
		},
		Scoring: ScoringConfig{
			CrossCheckCells:   rules.CrossCheckCells,
			CrossCheckMarkers: rules.CrossCheckMarkers,
			BasicInfoCells:    rules.BasicInfoCells,
		},
		Registry: RegistryConfig{
			Endpoint: registry.DefaultEndpoint,
			Timeout:  registry.DefaultTimeout,
			CacheTTL: time.Hour,
		},
		Storage: StorageConfig{
			ReportDir: ".cache/score_reports",
			OutputDir: "output",
		},
		Mapping: MappingConfig{
			CurrentColumn: layout.CurrentColumn,
			PriorColumn:   layout.PriorColumn,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads a YAML file over the defaults, applies .env and environment
// overrides, then validates. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		fmt.Printf("[WARNING] Config %s not found, using defaults\n", path)
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("DATABASE_URL"); v != "" {
		c.Storage.DatabaseURL = v
	}
	if v := getenv("REGISTRY_APP_CODE"); v != "" {
		c.Registry.AppCode = v
	}
	if v := getenv("REGISTRY_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid REGISTRY_ENABLED %q: %w", v, err)
		}
		c.Registry.Enabled = enabled
	}
	if v := getenv("AUDIT_OUTPUT_DIR"); v != "" {
		c.Storage.OutputDir = v
	}
	return nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	var errs []error
	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("tolerance must be >= 0, got %v", c.Tolerance))
	}
	if c.Anomalies.FirstRow < 1 || c.Anomalies.LastRow < c.Anomalies.FirstRow {
		errs = append(errs, fmt.Errorf("anomaly rows %d..%d out of order", c.Anomalies.FirstRow, c.Anomalies.LastRow))
	}
	if c.Anomalies.NameColumn < 1 || c.Anomalies.DiffColumn < 1 {
		errs = append(errs, fmt.Errorf("anomaly columns must be >= 1"))
	}
	if len(c.Scoring.CrossCheckCells) != 4 {
		errs = append(errs, fmt.Errorf("cross_check_cells needs 4 cells, got %d", len(c.Scoring.CrossCheckCells)))
	}
	if len(c.Scoring.BasicInfoCells) != 2 {
		errs = append(errs, fmt.Errorf("basic_info_cells needs 2 cells, got %d", len(c.Scoring.BasicInfoCells)))
	}
	if c.Sheets.Mapping == "" {
		errs = append(errs, fmt.Errorf("sheets.mapping is required"))
	}
	if c.Registry.Enabled && c.Registry.AppCode == "" {
		errs = append(errs, fmt.Errorf("registry enabled without app code (set REGISTRY_APP_CODE)"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// =============================================================================
// ENGINE SETTINGS
// =============================================================================

// Layout returns the mapping sheet layout.
func (c *Config) Layout() mapping.Layout {
	return mapping.Layout{
		Sheet:         c.Sheets.Mapping,
		CurrentColumn: c.Mapping.CurrentColumn,
		PriorColumn:   c.Mapping.PriorColumn,
	}
}

// MappingTables builds the alias tables, merging the override file when
// one is configured. Ambiguity surfaces here as a *mapping.ConfigurationError.
func (c *Config) MappingTables() (*mapping.Config, error) {
	var overrides *mapping.Overrides
	if c.Mapping.OverridesFile != "" {
		o, err := mapping.LoadOverrides(c.Mapping.OverridesFile)
		if err != nil {
			return nil, err
		}
		overrides = o
	}
	return mapping.DefaultConfig(c.Layout(), overrides)
}

// AnomalyScan returns the notes sheet scan range.
func (c *Config) AnomalyScan() reconcile.AnomalyScan {
	return reconcile.AnomalyScan{
		Sheet:      c.Sheets.Notes,
		FirstRow:   c.Anomalies.FirstRow,
		LastRow:    c.Anomalies.LastRow,
		NameColumn: c.Anomalies.NameColumn,
		DiffColumn: c.Anomalies.DiffColumn,
	}
}

// ScoringRules returns the scorer's cell locations.
func (c *Config) ScoringRules() scoring.Rules {
	rules := scoring.DefaultRules()
	rules.CrossCheckSheet = c.Sheets.Check
	rules.CrossCheckCells = c.Scoring.CrossCheckCells
	if len(c.Scoring.CrossCheckMarkers) > 0 {
		rules.CrossCheckMarkers = c.Scoring.CrossCheckMarkers
	}
	rules.MappingSheet = c.Sheets.Mapping
	rules.BasicInfoSheet = c.Sheets.BasicInfo
	rules.BasicInfoCells = c.Scoring.BasicInfoCells
	return rules
}

// RegistryLookup returns the cached registry client, or nil when the
// registry is disabled.
func (c *Config) RegistryLookup() registry.Lookup {
	if !c.Registry.Enabled {
		return nil
	}
	client := registry.NewClient(c.Registry.Endpoint, c.Registry.AppCode, c.Registry.Timeout)
	if c.Registry.CacheTTL <= 0 {
		return client
	}
	return registry.NewCachedLookup(client, c.Registry.CacheTTL)
}
