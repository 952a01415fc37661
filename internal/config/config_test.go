package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevki/carbonara/internal/config"
	"github.com/sevki/carbonara/internal/measure"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CARBONARA_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Method)
	assert.Equal(t, 100, cfg.IntervalMS)
	assert.Equal(t, 1000, cfg.DurationMS)
	assert.Equal(t, "human", cfg.Format)
	assert.InDelta(t, 436.0, cfg.CO2ePerKWh, 1e-9)
	assert.InDelta(t, measure.DefaultTDPWatts, cfg.TDPWatts, 1e-9)
	assert.Empty(t, cfg.HistoryDB)
}

func TestLoadConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "carbonara.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
method = "acpi"
interval = 250
duration = 5000
format = "csv"
co2e = 50.0
tdp = 65.0
history = "/tmp/history.db"
verbose = true
`), 0o600))
	t.Setenv("CARBONARA_CONFIG", configPath)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "acpi", cfg.Method)
	assert.Equal(t, 250, cfg.IntervalMS)
	assert.Equal(t, 5000, cfg.DurationMS)
	assert.Equal(t, "csv", cfg.Format)
	assert.InDelta(t, 50.0, cfg.CO2ePerKWh, 1e-9)
	assert.InDelta(t, 65.0, cfg.TDPWatts, 1e-9)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDB)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "carbonara.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("this is not valid toml\n"), 0o600))
	t.Setenv("CARBONARA_CONFIG", configPath)

	_, err := config.Load(nil)
	require.Error(t, err)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "carbonara.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`method = "acpi"`+"\n"), 0o600))
	t.Setenv("CARBONARA_CONFIG", configPath)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("method", "auto", "")
	fs.Int("interval", 100, "")
	require.NoError(t, fs.Set("method", "tdp"))

	cfg, err := config.Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "tdp", cfg.Method, "a set flag wins over the file")
	assert.Equal(t, 100, cfg.IntervalMS, "an unset flag does not mask defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"bad-method.toml":   `method = "solar"`,
		"bad-format.toml":   `format = "yaml"`,
		"bad-interval.toml": `interval = 0`,
		"bad-tdp.toml":      `tdp = -1.0`,
	} {
		configPath := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(configPath, []byte(content+"\n"), 0o600))
		t.Setenv("CARBONARA_CONFIG", configPath)

		_, err := config.Load(nil)
		assert.Error(t, err, name)
	}
}

func TestMeasureConfig(t *testing.T) {
	t.Setenv("CARBONARA_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	mcfg, err := cfg.MeasureConfig()
	require.NoError(t, err)

	assert.Equal(t, measure.SourceAuto, mcfg.Source)
	assert.Equal(t, time.Second, mcfg.Duration)
	assert.Equal(t, 100*time.Millisecond, mcfg.SampleInterval)
	require.NoError(t, mcfg.Validate())
}
