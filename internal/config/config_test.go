package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Symbols)
	assert.Equal(t, "validated", cfg.Signal.Mode)
	assert.Equal(t, 6, cfg.Signal.OscillatorPeriod)
	assert.Equal(t, -20.0, cfg.Signal.UpperThreshold)
	assert.Equal(t, 10, cfg.Risk.VolatilityPeriod)
	assert.Equal(t, 20, cfg.Risk.CorrelationPeriod)
	assert.Equal(t, 0.95, cfg.Risk.Confidence)
	assert.Equal(t, 10.0, cfg.Risk.Threshold)
	assert.Equal(t, 3.0, cfg.Sizing.StopADRRatio)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
symbols: [BTCUSDT]
signal:
  mode: doubles
  oscillator_period: 8
risk:
  threshold: 15
sizing:
  risk_pct: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT"}, cfg.Symbols)
	assert.Equal(t, "doubles", cfg.Signal.Mode)
	assert.Equal(t, 8, cfg.Signal.OscillatorPeriod)
	assert.Equal(t, 15.0, cfg.Risk.Threshold)
	assert.Equal(t, 2.0, cfg.Sizing.RiskPct)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
exchange:
  api_key: from-file
risk:
  threshold: 15
`)
	t.Setenv("BYBIT_API_KEY", "from-env")
	t.Setenv("RISK_THRESHOLD", "25")
	t.Setenv("SWINGRISK_SYMBOLS", "ETHUSDT, SOLUSDT")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Exchange.APIKey)
	assert.Equal(t, 25.0, cfg.Risk.Threshold)
	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, cfg.Symbols)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	// Missing credentials.
	assert.Error(t, cfg.Validate())

	cfg.Exchange.APIKey = "k"
	cfg.Exchange.APISecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Signal.Mode = "bogus"
	assert.Error(t, cfg.Validate())
}
