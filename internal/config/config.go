package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"regime-rotation/internal/backtest"
	"regime-rotation/internal/forest"
	"regime-rotation/internal/logging"
	"regime-rotation/internal/model"
)

var validate = validator.New()

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load the regime sector table from a separate YAML.
	// Entries under Regimes override the file per regime.
	SectorsFile string                      `yaml:"sectors_file"`
	Regimes     map[string]model.SectorBook `yaml:"regimes"`

	Strategy StrategyConfig  `yaml:"strategy"`
	Forest   ForestConfig    `yaml:"forest"`
	Backtest backtest.Params `yaml:"backtest"`
	Data     DataConfig      `yaml:"data"`
	Log      logging.Config  `yaml:"log"`
	Server   ServerConfig    `yaml:"server"`
	Store    StoreConfig     `yaml:"store"`
}

type StrategyConfig struct {
	Name string `yaml:"name" default:"rotation" validate:"oneof=rotation oracle"`
}

type ForestConfig struct {
	Trees           int   `yaml:"trees" default:"100" validate:"gte=1"`
	MaxDepth        int   `yaml:"max_depth" default:"12" validate:"gte=1"`
	MinSamplesSplit int   `yaml:"min_samples_split" default:"15" validate:"gte=2"`
	MinSamplesLeaf  int   `yaml:"min_samples_leaf" default:"5" validate:"gte=1"`
	Seed            int64 `yaml:"seed"`
}

func (f ForestConfig) Params() forest.Params {
	return forest.Params{
		Trees:           f.Trees,
		MaxDepth:        f.MaxDepth,
		MinSamplesSplit: f.MinSamplesSplit,
		MinSamplesLeaf:  f.MinSamplesLeaf,
	}
}

// DataConfig points at the CSV inputs used by the CLI.
type DataConfig struct {
	Features          string `yaml:"features"`
	FeatureDateColumn string `yaml:"feature_date_column" default:"date"`
	Sectors           string `yaml:"sectors"`
	SectorDateColumn  string `yaml:"sector_date_column" default:"date"`
	Stocks            string `yaml:"stocks"`
}

type ServerConfig struct {
	Port    int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	Env     string        `yaml:"env" default:"development" validate:"oneof=development production test"`
	RunTTL  time.Duration `yaml:"run_ttl" default:"1h" validate:"gt=0"`
	MaxBody int64         `yaml:"max_body_bytes" default:"67108864" validate:"gt=0"`
}

type StoreConfig struct {
	// DuckDBPath enables run persistence when set. ":memory:" is accepted.
	DuckDBPath string `yaml:"duckdb_path"`
}

// Default returns a validated configuration carrying the built-in sector table.
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
	c.Regimes = DefaultRegimes()
	return c
}

// DefaultRegimes is the built-in regime sector table.
func DefaultRegimes() map[string]model.SectorBook {
	return map[string]model.SectorBook{
		"goldilocks":  {Long: []string{"XLK", "XLY", "XLC"}, Short: []string{"XLU", "XLP"}},
		"slowdown":    {Long: []string{"XLP", "XLU", "XLV"}, Short: []string{"XLY", "XLF"}},
		"stagflation": {Long: []string{"XLE", "XLB", "XLP"}, Short: []string{"XLK", "XLY"}},
		"overheating": {Long: []string{"XLE", "XLF", "XLI"}, Short: []string{"XLU", "XLRE"}},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads, merges and defaults config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.SectorsFile != "" {
		sectorsPath := c.SectorsFile
		if !filepath.IsAbs(sectorsPath) {
			// Relative to the config file first, then the working directory.
			cand := filepath.Join(filepath.Dir(path), sectorsPath)
			if _, err := os.Stat(cand); err == nil {
				sectorsPath = cand
			}
		}
		loaded, err := loadSectorsFile(sectorsPath)
		if err != nil {
			return nil, err
		}
		c.Regimes = MergeRegimes(loaded, c.Regimes)
	} else if len(c.Regimes) > 0 {
		c.Regimes = MergeRegimes(nil, c.Regimes)
	}
	if len(c.Regimes) == 0 {
		c.Regimes = DefaultRegimes()
	}
	if err := defaults.Set(&c); err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyEnv overlays API_PORT, API_ENV and LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("API_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	if _, err := model.NormalizeDate(c.Backtest.Cutoff); err != nil {
		return fmt.Errorf("backtest.cutoff: %w", err)
	}
	if _, err := c.SectorTable(); err != nil {
		return err
	}
	return nil
}

// SectorTable builds the immutable regime lookup from Regimes.
func (c *Config) SectorTable() (model.RegimeSectorTable, error) {
	books := make(map[model.Regime]model.SectorBook, len(c.Regimes))
	names := make([]string, 0, len(c.Regimes))
	for name := range c.Regimes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r, err := model.ParseRegime(name)
		if err != nil {
			return model.RegimeSectorTable{}, fmt.Errorf("regimes: %w", err)
		}
		b := c.Regimes[name]
		for _, t := range append(append([]string(nil), b.Long...), b.Short...) {
			if !model.IsSectorTicker(t) {
				return model.RegimeSectorTable{}, fmt.Errorf("regimes.%s: unknown sector ticker %q", name, t)
			}
		}
		books[r] = b
	}
	return model.NewRegimeSectorTable(books), nil
}

type sectorsFileWrapper struct {
	Regimes map[string]model.SectorBook `yaml:"regimes"`
}

func loadSectorsFile(path string) (map[string]model.SectorBook, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w sectorsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return w.Regimes, nil
}

// MergeRegimes overlays the books in override onto base. Within a regime a
// non-empty Long or Short list replaces the base list.
func MergeRegimes(base, override map[string]model.SectorBook) map[string]model.SectorBook {
	out := make(map[string]model.SectorBook, len(base)+len(override))
	for k, v := range base {
		out[regimeKey(k)] = v
	}
	for k, v := range override {
		k = regimeKey(k)
		b := out[k]
		if len(v.Long) > 0 {
			b.Long = v.Long
		}
		if len(v.Short) > 0 {
			b.Short = v.Short
		}
		out[k] = b
	}
	return out
}

func regimeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
