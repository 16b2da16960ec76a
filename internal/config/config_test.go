package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"HypeChart/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Stock.Ticker != "NVDA" || cfg.Stock.Start.Format(time.DateOnly) != "2023-01-01" {
		t.Errorf("stock defaults = %+v", cfg.Stock)
	}
	if cfg.Trends.TZ == nil || *cfg.Trends.TZ != 360 {
		t.Errorf("trends tz default = %v", cfg.Trends.TZ)
	}
	if cfg.Trends.MaxSpanDays != 269 || cfg.Trends.RequestDelay != 10*time.Second {
		t.Errorf("trends defaults = %+v", cfg.Trends)
	}
	if cfg.News.OnError != model.FailSkip || cfg.Stock.OnError != model.FailAbort || cfg.Trends.OnError != model.FailAbort {
		t.Errorf("failure mode defaults: news=%s stock=%s trends=%s", cfg.News.OnError, cfg.Stock.OnError, cfg.Trends.OnError)
	}
	if len(cfg.News.Keywords) != 4 || cfg.News.Keywords[0].Label != "AI" {
		t.Errorf("news keywords = %+v", cfg.News.Keywords)
	}
	if cfg.Charts.DPI != 300 || cfg.Charts.TrendWindow.End.Format(time.DateOnly) != "2025-03-01" {
		t.Errorf("chart defaults = %+v", cfg.Charts)
	}
	if cfg.Cache.TTL != 0 || cfg.Cache.DataDir != "data" {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
stock:
  ticker: NVDA
  start: 2024-01-01
  end: 2024-12-31
trends:
  keywords: [ChatGPT]
  tz: 0
  request_delay: 2s
news:
  keywords:
    - query: deepseek
    - query: artificial intelligence
      label: AI
  on_error: abort
cache:
  ttl: 24h
  match_params: true
charts:
  trend_compare: []
telegram:
  enabled: true
  chat_id: "100"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "secret")
	t.Setenv("DATA_DIR", "/tmp/hc")
	t.Setenv("CACHE_TTL", "1h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Stock.End.Format(time.DateOnly) != "2024-12-31" {
		t.Errorf("stock end = %v", cfg.Stock.End)
	}
	if cfg.Trends.TZ == nil || *cfg.Trends.TZ != 0 {
		t.Errorf("explicit tz 0 should be kept, got %v", cfg.Trends.TZ)
	}
	if cfg.Trends.RequestDelay != 2*time.Second {
		t.Errorf("request delay = %v", cfg.Trends.RequestDelay)
	}
	if cfg.News.Keywords[0].Label != "deepseek" || cfg.News.OnError != model.FailAbort {
		t.Errorf("news = %+v", cfg.News)
	}
	if cfg.Telegram.BotToken != "secret" || cfg.Cache.DataDir != "/tmp/hc" || cfg.Cache.TTL != time.Hour {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Telegram, cfg.Cache)
	}
	if !cfg.Cache.MatchParams {
		t.Error("match_params not read")
	}
	if len(cfg.Charts.TrendCompare) != 0 {
		t.Errorf("explicit empty trend_compare should be kept, got %v", cfg.Charts.TrendCompare)
	}
}

func TestLoad_InvalidDate(t *testing.T) {
	path := writeConfig(t, "stock:\n  start: 01/02/2024\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "invalid date") {
		t.Errorf("expected invalid date error, got %v", err)
	}
}

func TestLoad_InvalidCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected CACHE_TTL parse error")
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]func(*Config){
		"end before start": func(c *Config) { c.Stock.End = MustDate("2022-01-01") },
		"bad on_error":     func(c *Config) { c.News.OnError = "retry" },
		"zero dpi":         func(c *Config) { c.Charts.DPI = -1 },
		"telegram creds":   func(c *Config) { c.Telegram.Enabled = true },
		"empty query":      func(c *Config) { c.News.Keywords = []NewsKeyword{{Label: "x"}} },
		"trend window":     func(c *Config) { c.Charts.TrendWindow.End = MustDate("2024-01-01") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HYPECHART_TEST_VAR=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HYPECHART_TEST_VAR", "")
	os.Unsetenv("HYPECHART_TEST_VAR")
	LoadEnv(path)
	if got := os.Getenv("HYPECHART_TEST_VAR"); got != "from-dotenv" {
		t.Errorf("HYPECHART_TEST_VAR = %q", got)
	}
	LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
}
