package collector

import (
	"context"
	"math"
	"sync"
	"time"

	"HypeChart/internal/align"
	"HypeChart/internal/model"
)

// MockStockFetcher returns controllable fixed data for development and testing.
type MockStockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error

	mu    sync.Mutex
	calls int
}

func (m *MockStockFetcher) Name() string { return "mock-stock" }

func (m *MockStockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return GenerateMockBars(m.Price, start, end), nil
}

// Calls returns how many times the fetcher was asked for data.
func (m *MockStockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockTrendsFetcher returns a deterministic daily interest curve per keyword.
type MockTrendsFetcher struct {
	Err error

	mu     sync.Mutex
	calls  int
	Ranges []align.Window
}

func (m *MockTrendsFetcher) Name() string { return "mock-trends" }

func (m *MockTrendsFetcher) FetchInterest(_ context.Context, keywords []string, tf align.Window, _ string) (*model.Table, error) {
	m.mu.Lock()
	m.calls++
	m.Ranges = append(m.Ranges, tf)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t := model.NewTable("date", append(append([]string{}, keywords...), PartialColumn)...)
	i := 0
	for d := align.TruncateDay(tf.Start); !d.After(tf.End); d = d.AddDate(0, 0, 1) {
		values := make([]float64, len(keywords)+1)
		for k := range keywords {
			values[k] = math.Round(50 + 40*math.Sin(float64(i+k*7)/10))
		}
		t.Append(d, values...)
		i++
	}
	return t, nil
}

// Calls returns how many times the fetcher was asked for data.
func (m *MockTrendsFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockNewsFetcher returns a daily volume timeline. Errs fails selected keywords.
type MockNewsFetcher struct {
	Base float64
	Errs map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockNewsFetcher) Name() string { return "mock-news" }

func (m *MockNewsFetcher) FetchVolume(_ context.Context, keyword string, start, end time.Time) ([]model.VolumePoint, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[keyword]++
	m.mu.Unlock()
	if err, ok := m.Errs[keyword]; ok {
		return nil, err
	}
	base := m.Base
	if base == 0 {
		base = 100
	}
	var points []model.VolumePoint
	i := 0
	for d := align.TruncateDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		v := base * (1 + 0.5*math.Sin(float64(i)/5))
		points = append(points, model.VolumePoint{Date: d, Value: math.Round(v), Norm: 1e6})
		i++
	}
	return points, nil
}

// Calls returns how many times keyword was requested.
func (m *MockNewsFetcher) Calls(keyword string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[keyword]
}

// GenerateMockBars builds one bar per weekday in [start, end).
func GenerateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 100
	}
	var bars []model.OHLCV
	i := 0
	for d := align.TruncateDay(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.001)
		bars = append(bars, model.OHLCV{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}
