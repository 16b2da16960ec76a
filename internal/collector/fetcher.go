package collector

import (
	"context"
	"time"

	"HypeChart/internal/align"
	"HypeChart/internal/model"
)

// StockFetcher fetches daily price bars.
type StockFetcher interface {
	// FetchDailyBars returns bars for [start, end), oldest first.
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// TrendsFetcher fetches search interest for one timeframe.
type TrendsFetcher interface {
	// FetchInterest returns a table with one column per keyword plus isPartial.
	FetchInterest(ctx context.Context, keywords []string, timeframe align.Window, geo string) (*model.Table, error)
	Name() string
}

// NewsFetcher fetches a news-volume timeline for one keyword.
type NewsFetcher interface {
	FetchVolume(ctx context.Context, keyword string, start, end time.Time) ([]model.VolumePoint, error)
	Name() string
}
