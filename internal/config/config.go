// Package config loads calcpc settings from ~/.calcpc/config.yaml, an
// optional project overlay and CALCPC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pegada/calcpc/internal/locale"
	"github.com/pegada/calcpc/internal/sheet"
)

// Engine orderings.
const (
	OrderingInsertion   = "insertion"
	OrderingTopological = "topological"
)

// Environment variables that override file settings.
const (
	EnvHome        = "CALCPC_HOME"
	EnvProjectDir  = "CALCPC_PROJECT_DIR"
	EnvDBPath      = "CALCPC_DB_PATH"
	EnvLogLevel    = "CALCPC_LOG_LEVEL"
	EnvLogFormat   = "CALCPC_LOG_FORMAT"
	EnvOrdering    = "CALCPC_ORDERING"
	EnvConcurrency = "CALCPC_CONCURRENCY"
)

const (
	configFileName = "config.yaml"
	dbFileName     = "calcpc.db"
	outputTypeFile = "file"
	maxPrecision   = 10
	maxBatchSize   = 1000
)

// Config is the complete calcpc configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`

	configPath string
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path          string `yaml:"path"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
}

// EngineConfig tunes recalculation.
type EngineConfig struct {
	// Ordering is "insertion" (ascending row id) or "topological".
	Ordering string `yaml:"ordering"`

	// DivisionEpsilon is the divisor magnitude below which division yields 0.
	DivisionEpsilon float64 `yaml:"division_epsilon"`

	// ReferenceSheet holds the coefficients read by lookup and conditional cells.
	ReferenceSheet string `yaml:"reference_sheet"`

	// ReferenceAlias is the qualifier formulas use for the reference sheet, as in "Insumos!C4".
	ReferenceAlias string `yaml:"reference_alias"`

	// LinkSourceSheet is read by link cells whose target carries no sheet.
	LinkSourceSheet string `yaml:"link_source_sheet"`

	// MaxColumns is the widest valid layout column.
	MaxColumns int `yaml:"max_columns"`

	// BatchSize and Concurrency drive multi-owner sweeps.
	BatchSize   int `yaml:"batch_size"`
	Concurrency int `yaml:"concurrency"`
}

// OutputConfig controls how numbers are shown.
type OutputConfig struct {
	Precision int    `yaml:"precision"`
	Locale    string `yaml:"locale"`
}

// LoggingConfig controls logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = "."
	}
	return &Config{
		Database: DatabaseConfig{
			Path:          filepath.Join(dir, dbFileName),
			BusyTimeoutMs: 5000,
		},
		Engine: EngineConfig{
			Ordering:        OrderingInsertion,
			DivisionEpsilon: 1e-10,
			ReferenceSheet:  sheet.Coefficients,
			ReferenceAlias:  "Insumos",
			LinkSourceSheet: sheet.Forms,
			MaxColumns:      6,
			BatchSize:       100,
			Concurrency:     4,
		},
		Output: OutputConfig{
			Precision: 2,
			Locale:    "pt-BR",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		configPath: filepath.Join(dir, configFileName),
	}
}

// New returns the defaults overlaid with the global config file, if any,
// and then with environment variables.
func New() *Config {
	cfg := Default()
	if _, err := os.Stat(cfg.configPath); err == nil {
		if mergeErr := ShallowMergeYAML(cfg, cfg.configPath); mergeErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: ignoring %s: %v\n", cfg.configPath, mergeErr)
		}
	}
	cfg.applyEnv()
	return cfg
}

// Load reads the configuration file at path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := ShallowMergeYAML(cfg, path); err != nil {
		return nil, err
	}
	cfg.configPath = path
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvOrdering); v != "" {
		c.Engine.Ordering = v
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.Concurrency = n
		}
	}
}

// ConfigPath returns the file Save writes to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no configuration path set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks every section and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.Database.BusyTimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("database.busy_timeout_ms must be >= 0, got %d", c.Database.BusyTimeoutMs))
	}

	errs = append(errs, c.Engine.validate()...)

	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("output.precision must be between 0 and %d, got %d",
			maxPrecision, c.Output.Precision))
	}
	if _, err := locale.NewFormatterFor(c.Output.Locale); err != nil {
		errs = append(errs, fmt.Errorf("output.locale: %w", err))
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func (e EngineConfig) validate() []error {
	var errs []error
	switch e.Ordering {
	case OrderingInsertion, OrderingTopological:
	default:
		errs = append(errs, fmt.Errorf("engine.ordering must be %s or %s, got %q",
			OrderingInsertion, OrderingTopological, e.Ordering))
	}
	if e.DivisionEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("engine.division_epsilon must be > 0, got %g", e.DivisionEpsilon))
	}
	for key, name := range map[string]string{
		"engine.reference_sheet":   e.ReferenceSheet,
		"engine.link_source_sheet": e.LinkSourceSheet,
	} {
		if err := sheet.ValidateSheetName(name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if e.MaxColumns < 1 {
		errs = append(errs, fmt.Errorf("engine.max_columns must be >= 1, got %d", e.MaxColumns))
	}
	if e.BatchSize < 1 || e.BatchSize > maxBatchSize {
		errs = append(errs, fmt.Errorf("engine.batch_size must be between 1 and %d, got %d",
			maxBatchSize, e.BatchSize))
	}
	if e.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("engine.concurrency must be >= 1, got %d", e.Concurrency))
	}
	return errs
}
