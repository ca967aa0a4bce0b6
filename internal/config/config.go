// Package config provides runtime configuration for the bazaar assistant.
//
// Values come from three layers, lowest priority first: built-in defaults,
// an optional TOML file, and environment variables. The Gemini API key is
// env-only and is never read from or written to the config file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration.
type Config struct {
	CatalogPath       string  `toml:"catalog_path"`
	ListenAddr        string  `toml:"listen_addr"`
	Model             string  `toml:"model"`
	Temperature       float64 `toml:"temperature"`
	TopP              float64 `toml:"top_p"`
	MaxOutputTokens   int     `toml:"max_output_tokens"`
	RestockBonus      int     `toml:"restock_bonus"`
	LowStockThreshold int     `toml:"low_stock_threshold"`
	LogDir            string  `toml:"log_dir"`
	OrderDBPath       string  `toml:"order_db_path"`

	// APIKey is sourced exclusively from GEMINI_API_KEY.
	APIKey string `toml:"-"`
	Debug  bool   `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CatalogPath:       "buku.csv",
		ListenAddr:        ":8080",
		Model:             "gemini-1.5-flash",
		Temperature:       0.7,
		TopP:              0.95,
		MaxOutputTokens:   1024,
		RestockBonus:      0,
		LowStockThreshold: 5,
		LogDir:            "logs",
		OrderDBPath:       "orders.db",
	}
}

// Load builds a Config from defaults, the optional TOML file at path, and
// environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.CatalogPath = getenv("BUKUBOT_CATALOG", cfg.CatalogPath)
	cfg.ListenAddr = getenv("BUKUBOT_ADDR", cfg.ListenAddr)
	cfg.Model = getenv("BUKUBOT_MODEL", cfg.Model)
	cfg.LogDir = getenv("BUKUBOT_LOG_DIR", cfg.LogDir)
	cfg.OrderDBPath = getenv("BUKUBOT_ORDER_DB", cfg.OrderDBPath)
	cfg.RestockBonus = intenv("BUKUBOT_RESTOCK_BONUS", cfg.RestockBonus)
	cfg.LowStockThreshold = intenv("BUKUBOT_LOW_STOCK_THRESHOLD", cfg.LowStockThreshold)
	cfg.MaxOutputTokens = intenv("BUKUBOT_MAX_OUTPUT_TOKENS", cfg.MaxOutputTokens)
	cfg.APIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog_path must not be empty")
	}
	if c.RestockBonus < 0 {
		return fmt.Errorf("restock_bonus must not be negative, got %d", c.RestockBonus)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g", c.Temperature)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be in (0, 1], got %g", c.TopP)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive, got %d", c.MaxOutputTokens)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intenv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
