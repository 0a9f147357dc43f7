// Package config loads the application configuration from a YAML file with
// environment-variable overrides. The loaded Config is immutable by
// convention: components receive it at construction and never write back.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Symbols []string `yaml:"symbols"`

	Signal struct {
		Timeframe        string  `yaml:"timeframe"`         // kline interval driving the swingline
		HistoryBars      int     `yaml:"history_bars"`      // bars fetched per cycle
		Variant          string  `yaml:"variant"`           // oscillator | breakout
		Mode             string  `yaml:"mode"`              // base | validated | doubles
		OscillatorPeriod int     `yaml:"oscillator_period"` // Williams %R period
		UpperThreshold   float64 `yaml:"upper_threshold"`
		LowerThreshold   float64 `yaml:"lower_threshold"`
		BreakoutLookback int     `yaml:"breakout_lookback"`
		ATRPeriod        int     `yaml:"atr_period"`
	} `yaml:"signal"`

	Risk struct {
		VolatilityPeriod  int     `yaml:"volatility_period"`
		CorrelationPeriod int     `yaml:"correlation_period"`
		Confidence        float64 `yaml:"confidence"`
		Threshold         float64 `yaml:"threshold"` // max tolerated ΔVaR, percent
	} `yaml:"risk"`

	Sizing struct {
		ADRPeriod    int     `yaml:"adr_period"`
		StopADRRatio float64 `yaml:"stop_adr_ratio"`
		RiskPct      float64 `yaml:"risk_pct"` // % of balance per trade
	} `yaml:"sizing"`

	Exchange struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		Demo      bool   `yaml:"demo"`
	} `yaml:"exchange"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Schedule struct {
		CycleCron  string `yaml:"cycle_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
		UseStream  bool   `yaml:"use_stream"` // trigger cycles from the websocket bar-close push
	} `yaml:"schedule"`

	Report struct {
		ExcelPath string `yaml:"excel_path"` // session workbook written on shutdown
	} `yaml:"report"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Monitoring struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"monitoring"`

	Workers int `yaml:"workers"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SWINGRISK_SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("BYBIT_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("BYBIT_API_SECRET"); v != "" {
		cfg.Exchange.APISecret = v
	}
	if v := os.Getenv("BYBIT_DEMO"); v != "" {
		cfg.Exchange.Demo = v == "true" || v == "1"
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_CYCLE"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("RISK_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.Threshold = f
		}
	}
	if v := os.Getenv("RISK_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sizing.RiskPct = f
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	}
	if c.Signal.Timeframe == "" {
		c.Signal.Timeframe = "60"
	}
	if c.Signal.HistoryBars == 0 {
		c.Signal.HistoryBars = 200
	}
	if c.Signal.Variant == "" {
		c.Signal.Variant = "oscillator"
	}
	if c.Signal.Mode == "" {
		c.Signal.Mode = "validated"
	}
	if c.Signal.OscillatorPeriod == 0 {
		c.Signal.OscillatorPeriod = 6
	}
	if c.Signal.UpperThreshold == 0 {
		c.Signal.UpperThreshold = -20
	}
	if c.Signal.LowerThreshold == 0 {
		c.Signal.LowerThreshold = -80
	}
	if c.Signal.BreakoutLookback == 0 {
		c.Signal.BreakoutLookback = 2
	}
	if c.Signal.ATRPeriod == 0 {
		c.Signal.ATRPeriod = 12
	}
	if c.Risk.VolatilityPeriod == 0 {
		c.Risk.VolatilityPeriod = 10
	}
	if c.Risk.CorrelationPeriod == 0 {
		c.Risk.CorrelationPeriod = 20
	}
	if c.Risk.Confidence == 0 {
		c.Risk.Confidence = 0.95
	}
	if c.Risk.Threshold == 0 {
		c.Risk.Threshold = 10
	}
	if c.Sizing.ADRPeriod == 0 {
		c.Sizing.ADRPeriod = 10
	}
	if c.Sizing.StopADRRatio == 0 {
		c.Sizing.StopADRRatio = 3
	}
	if c.Sizing.RiskPct == 0 {
		c.Sizing.RiskPct = 5
	}
	if c.Schedule.CycleCron == "" {
		// Five seconds after every hour close.
		c.Schedule.CycleCron = "5 0 * * * *"
	}
	if c.Monitoring.ListenAddr == "" {
		c.Monitoring.ListenAddr = ":9090"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols is required")
	}
	if c.Exchange.APIKey == "" {
		return fmt.Errorf("exchange.api_key is required")
	}
	if c.Exchange.APISecret == "" {
		return fmt.Errorf("exchange.api_secret is required")
	}
	if c.Risk.Confidence <= 0 || c.Risk.Confidence >= 1 {
		return fmt.Errorf("risk.confidence must be in (0, 1)")
	}
	if c.Sizing.RiskPct <= 0 || c.Sizing.RiskPct > 100 {
		return fmt.Errorf("sizing.risk_pct must be in (0, 100]")
	}
	switch c.Signal.Mode {
	case "base", "validated", "doubles":
	default:
		return fmt.Errorf("signal.mode must be base, validated or doubles")
	}
	switch c.Signal.Variant {
	case "oscillator", "breakout":
	default:
		return fmt.Errorf("signal.variant must be oscillator or breakout")
	}
	return nil
}

func splitSymbols(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
