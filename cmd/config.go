package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/invest"
	"github.com/etnz/invest/eodhd"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the persistent configuration of the application.
type Config struct {
	Currency    string            `json:"currency"`    // reference currency
	Inflation   string            `json:"inflation"`   // inflation index, IPCA or IPC
	DefaultFile string            `json:"defaultfile"` // transaction export
	CacheDir    string            `json:"cachedir"`
	LogLevel    string            `json:"loglevel"`
	Provider    string            `json:"provider"`   // price provider, yahoo or eodhd
	Benchmarks  map[string]string `json:"benchmarks"` // symbol by name

	EODHDKey string `json:"-"` // only read from the environment
}

// price providers.
const (
	Yahoo = "yahoo"
	EODHD = "eodhd"
)

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() Config {
	return Config{
		Currency:    "BRL",
		Inflation:   "IPCA",
		DefaultFile: "status.txt",
		CacheDir:    ".cache",
		LogLevel:    "info",
		Provider:    Yahoo,
		Benchmarks: map[string]string{
			"IBOV":  "^BVSP",
			"SP500": "^GSPC",
		},
	}
}

// environment overrides, by variable name.
var overrides = map[string]func(*Config, string){
	"INVEST_CURRENCY":  func(c *Config, v string) { c.Currency = v },
	"INVEST_INFLATION": func(c *Config, v string) { c.Inflation = v },
	"INVEST_FILE":      func(c *Config, v string) { c.DefaultFile = v },
	"INVEST_CACHE_DIR": func(c *Config, v string) { c.CacheDir = v },
	"INVEST_LOG_LEVEL": func(c *Config, v string) { c.LogLevel = v },
	"INVEST_PROVIDER":  func(c *Config, v string) { c.Provider = v },
	eodhd.APIKeyEnv:    func(c *Config, v string) { c.EODHDKey = v },
}

// LoadConfig reads the configuration file at path, creating it with the
// default values if it does not exist.
//
// Values are then overridden by INVEST_* environment variables, also read
// from a .env file in the working directory.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env: %w", err)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return Config{}, err
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return Config{}, fmt.Errorf("error creating config file %q: %w", path, err)
		}
	case err != nil:
		return Config{}, fmt.Errorf("error reading config file %q: %w", path, err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file %q: %w", path, err)
		}
	}

	for name, set := range overrides {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			set(&cfg, v)
		}
	}
	cfg.Currency = strings.ToUpper(cfg.Currency)
	cfg.Provider = strings.ToLower(cfg.Provider)
	return cfg, cfg.Validate()
}

// Validate checks the values of the configuration.
func (c Config) Validate() error {
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("%w: unknown currency %q", invest.ErrInvalidInput, c.Currency)
	}
	if c.Inflation == "" {
		return fmt.Errorf("%w: missing inflation index", invest.ErrInvalidInput)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q: %w", invest.ErrInvalidInput, c.LogLevel, err)
	}
	switch c.Provider {
	case Yahoo:
	case EODHD:
		if c.EODHDKey == "" {
			return fmt.Errorf("%w: provider %s requires %s", invest.ErrInvalidInput, EODHD, eodhd.APIKeyEnv)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q", invest.ErrInvalidInput, c.Provider)
	}
	return nil
}
