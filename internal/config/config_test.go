package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-rotation/internal/model"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 100, c.Forest.Trees)
	assert.Equal(t, 12, c.Forest.MaxDepth)
	assert.Equal(t, 15, c.Forest.MinSamplesSplit)
	assert.Equal(t, 5, c.Forest.MinSamplesLeaf)
	assert.Equal(t, "2015-01-01", c.Backtest.Cutoff)
	assert.Equal(t, 5, c.Backtest.TopN)
	assert.Equal(t, 1.0, c.Backtest.InitialEquity)
	assert.Equal(t, "rotation", c.Strategy.Name)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, time.Hour, c.Server.RunTTL)

	table, err := c.SectorTable()
	require.NoError(t, err)
	assert.Equal(t, model.NumRegimes, table.Len())
}

func TestLoadMergesSectorsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sectors.yaml", `
regimes:
  goldilocks: {long: [XLK], short: [XLU]}
  slowdown:   {long: [XLP], short: [XLY]}
`)
	cfg := writeFile(t, dir, "config.yaml", `
sectors_file: sectors.yaml
regimes:
  Slowdown: {long: [XLV]}
forest:
  trees: 10
backtest:
  top_n: 3
`)

	c, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Forest.Trees)
	assert.Equal(t, 12, c.Forest.MaxDepth)
	assert.Equal(t, 3, c.Backtest.TopN)
	assert.Equal(t, "2015-01-01", c.Backtest.Cutoff)

	table, err := c.SectorTable()
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	b, ok := table.Lookup(model.Slowdown)
	require.True(t, ok)
	assert.Equal(t, []string{"XLV"}, b.Long)
	assert.Equal(t, []string{"XLY"}, b.Short)
	_, ok = table.Lookup(model.Stagflation)
	assert.False(t, ok)
}

func TestLoadWithoutRegimesUsesDefaults(t *testing.T) {
	c, err := Load(writeFile(t, t.TempDir(), "c.yaml", "log: {level: debug}\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Len(t, c.Regimes, model.NumRegimes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	c, err := Load(writeFile(t, t.TempDir(), "c.yaml", "server: {port: 1234}\n"))
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "production", c.Server.Env)
	assert.Equal(t, "warn", c.Log.Level)

	t.Setenv("API_PORT", "http")
	_, err = LoadUnchecked(writeFile(t, t.TempDir(), "c.yaml", "{}\n"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		mut  func(c *Config)
	}{
		{"unknown ticker", func(c *Config) { c.Regimes["goldilocks"] = model.SectorBook{Long: []string{"SPY"}} }},
		{"unknown regime", func(c *Config) { c.Regimes["boom"] = model.SectorBook{Long: []string{"XLK"}} }},
		{"no trees", func(c *Config) { c.Forest.Trees = 0 }},
		{"zero leaf size", func(c *Config) { c.Forest.MinSamplesLeaf = 0 }},
		{"bad cutoff", func(c *Config) { c.Backtest.Cutoff = "someday" }},
		{"bad strategy", func(c *Config) { c.Strategy.Name = "momentum" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative equity", func(c *Config) { c.Backtest.InitialEquity = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mut(c)
			assert.Error(t, c.Validate())
		})
	}
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestMergeRegimes(t *testing.T) {
	base := map[string]model.SectorBook{"Goldilocks": {Long: []string{"XLK"}, Short: []string{"XLU"}}}
	out := MergeRegimes(base, map[string]model.SectorBook{"goldilocks": {Short: []string{"XLP"}}})
	assert.Equal(t, map[string]model.SectorBook{
		"goldilocks": {Long: []string{"XLK"}, Short: []string{"XLP"}},
	}, out)
	assert.Equal(t, []string{"XLU"}, base["Goldilocks"].Short)
}

func TestForestParams(t *testing.T) {
	p := Default().Forest.Params()
	assert.NoError(t, p.Validate())
	assert.Equal(t, 100, p.Trees)
}
