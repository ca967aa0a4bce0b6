package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BUKUBOT_CATALOG", "BUKUBOT_ADDR", "BUKUBOT_MODEL", "BUKUBOT_LOG_DIR",
		"BUKUBOT_ORDER_DB", "BUKUBOT_RESTOCK_BONUS", "BUKUBOT_LOW_STOCK_THRESHOLD",
		"BUKUBOT_MAX_OUTPUT_TOKENS", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.CatalogPath != "buku.csv" {
		t.Errorf("expected CatalogPath=buku.csv, got %s", cfg.CatalogPath)
	}
	if cfg.Model != "gemini-1.5-flash" {
		t.Errorf("expected Model=gemini-1.5-flash, got %s", cfg.Model)
	}
	if cfg.LowStockThreshold != 5 {
		t.Errorf("expected LowStockThreshold=5, got %d", cfg.LowStockThreshold)
	}
	if cfg.RestockBonus != 0 {
		t.Errorf("expected RestockBonus=0, got %d", cfg.RestockBonus)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
catalog_path = "data/katalog.csv"
temperature = 0.4
restock_bonus = 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CatalogPath != "data/katalog.csv" {
		t.Errorf("expected file value for CatalogPath, got %s", cfg.CatalogPath)
	}
	if cfg.Temperature != 0.4 {
		t.Errorf("expected Temperature=0.4, got %g", cfg.Temperature)
	}
	if cfg.RestockBonus != 10 {
		t.Errorf("expected RestockBonus=10, got %d", cfg.RestockBonus)
	}
	// Untouched keys keep defaults.
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default ListenAddr, got %s", cfg.ListenAddr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`catalog_path = "from-file.csv"`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("BUKUBOT_CATALOG", "from-env.csv")
	t.Setenv("BUKUBOT_RESTOCK_BONUS", "3")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CatalogPath != "from-env.csv" {
		t.Errorf("expected env to beat file, got %s", cfg.CatalogPath)
	}
	if cfg.RestockBonus != 3 {
		t.Errorf("expected RestockBonus=3, got %d", cfg.RestockBonus)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("expected APIKey from env, got %q", cfg.APIKey)
	}
}

func TestLoad_APIKeyNeverFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_key = "leaked"`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "" {
		t.Errorf("API key must never come from the config file, got %q", cfg.APIKey)
	}
}

func TestLoad_Validation(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative restock", `restock_bonus = -1`, "restock_bonus"},
		{"bad temperature", `temperature = 3.0`, "temperature"},
		{"bad top_p", `top_p = 0.0`, "top_p"},
		{"bad max tokens", `max_output_tokens = 0`, "max_output_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
