package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"HypeChart/internal/align"
	"HypeChart/internal/cache"
	"HypeChart/internal/collector"
	"HypeChart/internal/config"
	"HypeChart/internal/logging"
	"HypeChart/internal/notifier"
	"HypeChart/internal/recorder"
	"HypeChart/internal/report"
	"HypeChart/internal/scheduler"
)

// exitInterrupted is the conventional status for termination by SIGINT.
const exitInterrupted = 130

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] HypeChart starting...")

	envPath := ".env"
	if v := os.Getenv("ENV_FILE"); v != "" {
		envPath = v
	}
	config.LoadEnv(envPath)

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	logCloser, err := logging.Setup(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	if err != nil {
		log.Fatalf("[FATAL] setup logging: %v", err)
	}
	defer logCloser.Close()

	// Init fetchers
	stock := collector.NewYahooFetcher(cfg.Stock.BaseURL, cfg.Proxy, cfg.Stock.Timeout)
	trends := collector.NewGoogleTrendsFetcher(cfg.Trends.BaseURL, cfg.Trends.HL, *cfg.Trends.TZ, cfg.Proxy, cfg.Trends.Timeout)
	news := collector.NewGDELTFetcher(cfg.News.BaseURL, cfg.Proxy, cfg.News.Timeout)
	log.Printf("[INFO] data sources: %s, %s, %s", stock.Name(), trends.Name(), news.Name())

	// Init collector
	store := cache.NewStore(cfg.Cache.DataDir, cache.NewPolicy(cfg.Cache.TTL, cfg.Cache.MatchParams))
	col := collector.NewCollector(stock, trends, news, store, collectorOptions(cfg))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var display []report.Sink
	if cfg.Telegram.Enabled {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		display = append(display, &report.TelegramSink{Sender: tn, Retries: 3})
	}

	window, err := align.NewWindow(cfg.Charts.TrendWindow.Start.Time, cfg.Charts.TrendWindow.End.Time)
	if err != nil {
		log.Fatalf("[FATAL] trend window: %v", err)
	}
	runner := report.NewRunner(col, rec, report.NewFileSink(cfg.Charts.ResultsDir), display, report.Options{
		TrendCompare:  cfg.Charts.TrendCompare,
		TrendWindow:   window,
		DPI:           cfg.Charts.DPI,
		NotifyRetries: 3,
	})
	if tn != nil {
		runner.Notifier = tn
	}
	if err := runner.Init(); err != nil {
		log.Fatalf("[FATAL] init cache: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if os.Getenv("WATCH") != "true" {
		summary, err := runner.Run(ctx)
		switch code := exitCode(ctx, err); code {
		case 0:
			log.Printf("[INFO] run %s finished: %d charts", summary.RunID, len(summary.Charts))
		case exitInterrupted:
			log.Println("[WARN] run interrupted")
			os.Exit(code)
		default:
			log.Fatalf("[FATAL] run: %v", err)
		}
		return
	}

	// Watch mode: refresh on schedule until interrupted
	sched := scheduler.NewScheduler(ctx, runner.Run, rec)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	go sched.RunNow()

	log.Println("[INFO] HypeChart is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

func collectorOptions(cfg *config.Config) collector.Options {
	keywords := make([]collector.NewsKeyword, 0, len(cfg.News.Keywords))
	for _, kw := range cfg.News.Keywords {
		keywords = append(keywords, collector.NewsKeyword{Query: kw.Query, Label: kw.Label})
	}
	return collector.Options{
		Stock: collector.StockOptions{
			Ticker:  cfg.Stock.Ticker,
			Start:   cfg.Stock.Start.Time,
			End:     cfg.Stock.End.Time,
			OnError: cfg.Stock.OnError,
		},
		Trends: collector.TrendsOptions{
			Keywords:     cfg.Trends.Keywords,
			Start:        cfg.Trends.Start.Time,
			End:          cfg.Trends.End.Time,
			Geo:          cfg.Trends.Geo,
			MaxSpanDays:  cfg.Trends.MaxSpanDays,
			RequestDelay: cfg.Trends.RequestDelay,
			OnError:      cfg.Trends.OnError,
		},
		News: collector.NewsOptions{
			Keywords: keywords,
			Start:    cfg.News.Start.Time,
			End:      cfg.News.End.Time,
			OnError:  cfg.News.OnError,
		},
	}
}

// exitCode maps the result of a single run to the process exit status.
func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return exitInterrupted
	default:
		return 1
	}
}
