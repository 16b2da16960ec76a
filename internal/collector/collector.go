package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"HypeChart/internal/align"
	"HypeChart/internal/cache"
	"HypeChart/internal/model"
)

// Cache file names.
const (
	StockFile  = "nvidia_stock_data.csv"
	TrendsFile = "google_trends_ai.csv"
)

// Source names used in outcomes and the manifest.
const (
	SourceStock  = "stock"
	SourceTrends = "trends"
	SourceNews   = "news"
)

// NewsFile returns the cache file name for a news keyword.
func NewsFile(keyword string) string {
	return strings.ToLower(keyword) + "_news.csv"
}

// NewsColumn returns the volume column name for a news keyword.
func NewsColumn(keyword string) string {
	return strings.ToLower(keyword) + "_news"
}

// NormColumn returns the normalization column name for a news keyword.
func NormColumn(keyword string) string {
	return strings.ToLower(keyword) + "_norm"
}

// StockOptions configures the stock request. End is exclusive.
type StockOptions struct {
	Ticker  string
	Start   time.Time
	End     time.Time
	OnError model.FailureMode
}

// TrendsOptions configures the trends request and its rate limiting.
type TrendsOptions struct {
	Keywords     []string
	Start        time.Time
	End          time.Time
	Geo          string
	MaxSpanDays  int
	RequestDelay time.Duration
	OnError      model.FailureMode
}

// NewsKeyword is a GDELT query with its display label.
type NewsKeyword struct {
	Query string
	Label string
}

// NewsOptions configures the news requests. Zero dates leave the range to
// the upstream default.
type NewsOptions struct {
	Keywords []NewsKeyword
	Start    time.Time
	End      time.Time
	OnError  model.FailureMode
}

// Options groups the per-source request settings.
type Options struct {
	Stock  StockOptions
	Trends TrendsOptions
	News   NewsOptions
}

// Collector serves each source from the cache or its upstream fetcher.
type Collector struct {
	StockFetcher  StockFetcher
	TrendsFetcher TrendsFetcher
	NewsFetcher   NewsFetcher
	Store         *cache.Store
	Options       Options

	// Sleep waits between trends sub-range requests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewCollector creates a new Collector.
func NewCollector(stock StockFetcher, trends TrendsFetcher, news NewsFetcher, store *cache.Store, opts Options) *Collector {
	return &Collector{
		StockFetcher:  stock,
		TrendsFetcher: trends,
		NewsFetcher:   news,
		Store:         store,
		Options:       opts,
		Sleep:         sleepCtx,
	}
}

// Stock returns the daily stock table for the configured ticker.
func (c *Collector) Stock(ctx context.Context) (*model.Table, model.Outcome) {
	o := c.Options.Stock
	params := url.Values{
		"ticker": {o.Ticker},
		"start":  {dateParam(o.Start)},
		"end":    {dateParam(o.End)},
	}.Encode()

	return c.cached(ctx, SourceStock, o.Ticker, StockFile, params, o.OnError, func(ctx context.Context) (*model.Table, error) {
		bars, err := c.StockFetcher.FetchDailyBars(ctx, o.Ticker, o.Start, o.End)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			return nil, ErrEmptyResult
		}
		return model.BarsToTable(bars), nil
	})
}

// Trends returns search interest for all configured keywords. The range is
// fetched in sequential sub-ranges with a fixed delay between requests.
func (c *Collector) Trends(ctx context.Context) (*model.Table, model.Outcome) {
	o := c.Options.Trends
	params := url.Values{
		"keywords": {strings.Join(o.Keywords, ",")},
		"start":    {dateParam(o.Start)},
		"end":      {dateParam(o.End)},
		"geo":      {o.Geo},
		"span":     {strconv.Itoa(o.MaxSpanDays)},
	}.Encode()

	return c.cached(ctx, SourceTrends, strings.Join(o.Keywords, ","), TrendsFile, params, o.OnError, func(ctx context.Context) (*model.Table, error) {
		w, err := align.NewWindow(o.Start, o.End)
		if err != nil {
			return nil, err
		}
		var out *model.Table
		for i, sub := range SplitRange(w, o.MaxSpanDays) {
			if i > 0 {
				if err := c.sleep(ctx, o.RequestDelay); err != nil {
					return nil, err
				}
			}
			part, err := c.TrendsFetcher.FetchInterest(ctx, o.Keywords, sub, o.Geo)
			if err != nil {
				return nil, fmt.Errorf("range %s: %w", sub, err)
			}
			if part == nil || part.Len() == 0 {
				log.Printf("[INFO] trends range %s returned no rows", sub)
				continue
			}
			if out == nil {
				out = model.NewTable(part.DateColumn, part.Columns...)
			}
			for _, r := range part.Rows {
				out.Append(r.Date, r.Values...)
			}
		}
		if out == nil {
			return nil, ErrEmptyResult
		}
		return out, nil
	})
}

// News returns one table per configured keyword, keyed by query. A skipped
// keyword does not affect the others; a FAILED one stops the remaining
// requests.
func (c *Collector) News(ctx context.Context) (map[string]*model.Table, []model.Outcome) {
	o := c.Options.News
	tables := make(map[string]*model.Table, len(o.Keywords))
	outcomes := make([]model.Outcome, 0, len(o.Keywords))

	for _, kw := range o.Keywords {
		query := kw.Query
		params := url.Values{
			"query": {query},
			"start": {dateParam(o.Start)},
			"end":   {dateParam(o.End)},
		}.Encode()

		t, out := c.cached(ctx, SourceNews, query, NewsFile(query), params, o.OnError, func(ctx context.Context) (*model.Table, error) {
			points, err := c.NewsFetcher.FetchVolume(ctx, query, o.Start, o.End)
			if err != nil {
				return nil, err
			}
			t := model.NewTable("date", NewsColumn(query), NormColumn(query))
			for _, p := range points {
				t.Append(p.Date, p.Value, p.Norm)
			}
			return t, nil
		})
		outcomes = append(outcomes, out)
		if out.OK() {
			tables[query] = t
		}
		if out.Status == model.StatusFailed {
			break
		}
	}
	return tables, outcomes
}

type fetchFunc func(ctx context.Context) (*model.Table, error)

// cached serves name from the store, or fetches and persists it on a miss.
func (c *Collector) cached(ctx context.Context, source, key, name, params string, mode model.FailureMode, fetch fetchFunc) (*model.Table, model.Outcome) {
	out := model.Outcome{Source: source, Key: key, Path: c.Store.Path(name)}

	t, ok, err := c.Store.Lookup(name, params)
	if err != nil {
		return nil, c.resolve(ctx, out, mode, fmt.Errorf("read cache: %w", err))
	}
	if ok {
		out.Status = model.StatusCached
		out.Rows = t.Len()
		log.Printf("[INFO] %s[%s] loaded from cache %s (%d rows)", source, key, out.Path, out.Rows)
		return t, out
	}

	t, err = fetch(ctx)
	if err != nil {
		return nil, c.resolve(ctx, out, mode, &FetchError{Source: source, Key: key, Err: err})
	}
	t.SortByDate()
	if err := c.Store.Save(name, source, params, t); err != nil {
		return nil, c.resolve(ctx, out, mode, fmt.Errorf("write cache: %w", err))
	}

	out.Status = model.StatusFetched
	out.Rows = t.Len()
	log.Printf("[INFO] %s[%s] saved %s (%d rows)", source, key, out.Path, out.Rows)
	return t, out
}

// resolve applies the failure mode. A cancelled run and an unreadable cache
// file always fail the source.
func (c *Collector) resolve(ctx context.Context, out model.Outcome, mode model.FailureMode, err error) model.Outcome {
	out.Err = err
	out.Status = mode.Resolve()
	if ctx.Err() != nil || errors.Is(err, cache.ErrNoDateColumn) {
		out.Status = model.StatusFailed
	}
	if out.Status == model.StatusSkipped {
		log.Printf("[WARN] %s[%s] skipped: %v", out.Source, out.Key, err)
	} else {
		log.Printf("[ERROR] %s[%s] failed: %v", out.Source, out.Key, err)
	}
	return out
}

func (c *Collector) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep == nil {
		return sleepCtx(ctx, d)
	}
	return c.Sleep(ctx, d)
}

func dateParam(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
