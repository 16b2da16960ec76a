package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"HypeChart/internal/model"
)

// Date is a calendar day written as YYYY-MM-DD.
type Date struct {
	time.Time
}

// MustDate parses s or panics. For defaults and tests.
func MustDate(s string) Date {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return Date{t}
}

func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("line %d: invalid date %q, want YYYY-MM-DD", n.Line, s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(time.DateOnly), nil
}

// NewsKeyword is a news query and its chart label.
type NewsKeyword struct {
	Query string `yaml:"query"`
	Label string `yaml:"label"`
}

// Config holds all application configuration.
type Config struct {
	Stock struct {
		Ticker  string            `yaml:"ticker"`
		Start   Date              `yaml:"start"`
		End     Date              `yaml:"end"`
		BaseURL string            `yaml:"base_url"`
		Timeout time.Duration     `yaml:"timeout"`
		OnError model.FailureMode `yaml:"on_error"`
	} `yaml:"stock"`
	Trends struct {
		Keywords     []string          `yaml:"keywords"`
		Start        Date              `yaml:"start"`
		End          Date              `yaml:"end"`
		Geo          string            `yaml:"geo"`
		HL           string            `yaml:"hl"`
		TZ           *int              `yaml:"tz"`
		MaxSpanDays  int               `yaml:"max_span_days"`
		RequestDelay time.Duration     `yaml:"request_delay"`
		BaseURL      string            `yaml:"base_url"`
		Timeout      time.Duration     `yaml:"timeout"`
		OnError      model.FailureMode `yaml:"on_error"`
	} `yaml:"trends"`
	News struct {
		Keywords []NewsKeyword     `yaml:"keywords"`
		Start    Date              `yaml:"start"`
		End      Date              `yaml:"end"`
		BaseURL  string            `yaml:"base_url"`
		Timeout  time.Duration     `yaml:"timeout"`
		OnError  model.FailureMode `yaml:"on_error"`
	} `yaml:"news"`
	Cache struct {
		DataDir     string        `yaml:"data_dir"`
		TTL         time.Duration `yaml:"ttl"`
		MatchParams bool          `yaml:"match_params"`
	} `yaml:"cache"`
	Charts struct {
		ResultsDir   string   `yaml:"results_dir"`
		DPI          float64  `yaml:"dpi"`
		TrendCompare []string `yaml:"trend_compare"`
		TrendWindow  struct {
			Start Date `yaml:"start"`
			End   Date `yaml:"end"`
		} `yaml:"trend_window"`
	} `yaml:"charts"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Enabled  bool   `yaml:"enabled"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// LoadEnv loads a .env file into the process environment. A missing file is
// not an error.
func LoadEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("[WARN] could not load %s: %v", path, err)
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Cache.DataDir = v
	}
	if v := os.Getenv("RESULTS_DIR"); v != "" {
		cfg.Charts.ResultsDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = ttl
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Stock.Ticker == "" {
		c.Stock.Ticker = "NVDA"
	}
	if c.Stock.Start.IsZero() {
		c.Stock.Start = MustDate("2023-01-01")
	}
	if c.Stock.End.IsZero() {
		c.Stock.End = MustDate("2025-10-01")
	}
	if c.Stock.Timeout == 0 {
		c.Stock.Timeout = 30 * time.Second
	}
	if c.Stock.OnError == "" {
		c.Stock.OnError = model.FailAbort
	}

	if len(c.Trends.Keywords) == 0 {
		c.Trends.Keywords = []string{"AI", "ChatGPT", "NVIDIA", "DeepSeek"}
	}
	if c.Trends.Start.IsZero() {
		c.Trends.Start = MustDate("2023-01-01")
	}
	if c.Trends.End.IsZero() {
		c.Trends.End = MustDate("2025-10-16")
	}
	if c.Trends.Geo == "" {
		c.Trends.Geo = "US"
	}
	if c.Trends.HL == "" {
		c.Trends.HL = "en-US"
	}
	if c.Trends.TZ == nil {
		tz := 360
		c.Trends.TZ = &tz
	}
	if c.Trends.MaxSpanDays == 0 {
		c.Trends.MaxSpanDays = 269
	}
	if c.Trends.RequestDelay == 0 {
		c.Trends.RequestDelay = 10 * time.Second
	}
	if c.Trends.Timeout == 0 {
		c.Trends.Timeout = 30 * time.Second
	}
	if c.Trends.OnError == "" {
		c.Trends.OnError = model.FailAbort
	}

	if len(c.News.Keywords) == 0 {
		c.News.Keywords = []NewsKeyword{
			{Query: "artificial intelligence", Label: "AI"},
			{Query: "machine learning", Label: "Machine Learning"},
			{Query: "chatgpt", Label: "ChatGPT"},
			{Query: "deepseek", Label: "DeepSeek"},
		}
	}
	for i := range c.News.Keywords {
		if c.News.Keywords[i].Label == "" {
			c.News.Keywords[i].Label = c.News.Keywords[i].Query
		}
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 30 * time.Second
	}
	if c.News.OnError == "" {
		c.News.OnError = model.FailSkip
	}

	if c.Cache.DataDir == "" {
		c.Cache.DataDir = "data"
	}
	if c.Charts.ResultsDir == "" {
		c.Charts.ResultsDir = "results"
	}
	if c.Charts.DPI == 0 {
		c.Charts.DPI = 300
	}
	if c.Charts.TrendCompare == nil {
		c.Charts.TrendCompare = []string{"ChatGPT", "DeepSeek"}
	}
	if c.Charts.TrendWindow.Start.IsZero() {
		c.Charts.TrendWindow.Start = MustDate("2025-01-01")
	}
	if c.Charts.TrendWindow.End.IsZero() {
		c.Charts.TrendWindow.End = MustDate("2025-03-01")
	}

	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/hypechart.db"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 6 * * *"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Stock.Ticker == "" {
		return fmt.Errorf("stock.ticker is required")
	}
	if !c.Stock.End.After(c.Stock.Start.Time) {
		return fmt.Errorf("stock.end must be after stock.start")
	}
	if !c.Trends.End.After(c.Trends.Start.Time) {
		return fmt.Errorf("trends.end must be after trends.start")
	}
	if !c.News.Start.IsZero() && !c.News.End.IsZero() && !c.News.End.After(c.News.Start.Time) {
		return fmt.Errorf("news.end must be after news.start")
	}
	if !c.Charts.TrendWindow.End.After(c.Charts.TrendWindow.Start.Time) {
		return fmt.Errorf("charts.trend_window.end must be after start")
	}
	for name, mode := range map[string]model.FailureMode{
		"stock":  c.Stock.OnError,
		"trends": c.Trends.OnError,
		"news":   c.News.OnError,
	} {
		if !mode.Valid() {
			return fmt.Errorf("%s.on_error must be %q or %q, got %q", name, model.FailSkip, model.FailAbort, mode)
		}
	}
	if len(c.Trends.Keywords) == 0 {
		return fmt.Errorf("trends.keywords must not be empty")
	}
	if len(c.News.Keywords) == 0 {
		return fmt.Errorf("news.keywords must not be empty")
	}
	for _, kw := range c.News.Keywords {
		if kw.Query == "" {
			return fmt.Errorf("news.keywords: query is required")
		}
	}
	if c.Charts.DPI <= 0 {
		return fmt.Errorf("charts.dpi must be positive")
	}
	if c.Trends.MaxSpanDays < 0 {
		return fmt.Errorf("trends.max_span_days must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required")
		}
	}
	return nil
}
