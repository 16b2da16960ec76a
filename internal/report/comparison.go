// Package report turns cached tables into the fixed set of comparison charts.
package report

import (
	"fmt"
	"strings"

	"HypeChart/internal/align"
	"HypeChart/internal/chart"
	"HypeChart/internal/collector"
	"HypeChart/internal/model"
)

// Figure sizes in inches.
const (
	newsWidthIn    = 12
	newsHeightIn   = 5
	wideWidthIn    = 14
	wideHeightIn   = 6
	defaultLineW   = 1.5
	emphasisLineW  = 2
	defaultCompany = "NVIDIA"
)

// Comparison is one chart ready to render. Save is false for display-only
// charts.
type Comparison struct {
	Name   string
	Save   bool
	Spec   chart.Spec
	Window align.Window
}

// Slug lowercases a label and replaces spaces with underscores.
func Slug(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

func closeSeries(stock *model.Table) (model.Series, error) {
	s, err := stock.Series(model.CloseColumn)
	if err != nil {
		return model.Series{}, fmt.Errorf("stock table: %w", err)
	}
	return s, nil
}

func newsSeries(news *model.Table, query string) (model.Series, error) {
	s, err := news.Series(collector.NewsColumn(query))
	if err != nil {
		return model.Series{}, fmt.Errorf("news table %q: %w", query, err)
	}
	return s, nil
}

// alignedWindow returns the overlap actually covered by the aligned series.
func alignedWindow(a, b model.Series) align.Window {
	if w, ok := align.Overlap(a, b); ok {
		return w
	}
	return align.Window{}
}

// NewsVsStock compares one keyword's news volume with the closing price over
// their shared date range.
func NewsVsStock(kw collector.NewsKeyword, news, stock *model.Table, ticker string, dpi float64) (Comparison, error) {
	vol, err := newsSeries(news, kw.Query)
	if err != nil {
		return Comparison{}, err
	}
	closes, err := closeSeries(stock)
	if err != nil {
		return Comparison{}, err
	}
	left, right := align.Align(vol, closes, nil)
	left.Name = kw.Label + " News Volume"
	right.Name = ticker + " Close Price"

	return Comparison{
		Name:   "news_vs_stock_" + Slug(kw.Label),
		Save:   true,
		Window: alignedWindow(left, right),
		Spec: chart.Spec{
			Title:      fmt.Sprintf("%s News vs %s Stock Price", kw.Label, defaultCompany),
			Left:       left,
			Right:      right,
			LeftLabel:  "News Volume",
			RightLabel: ticker + " Stock Price",
			LeftColor:  chart.Blue,
			RightColor: chart.Purple,
			LeftWidth:  defaultLineW,
			RightWidth: emphasisLineW,
			WidthIn:    newsWidthIn,
			HeightIn:   newsHeightIn,
			DPI:        dpi,
		},
	}, nil
}

// HeadlineNewsVsStock is the wide display-only chart for the first news
// keyword.
func HeadlineNewsVsStock(kw collector.NewsKeyword, news, stock *model.Table, ticker string, dpi float64) (Comparison, error) {
	vol, err := newsSeries(news, kw.Query)
	if err != nil {
		return Comparison{}, err
	}
	closes, err := closeSeries(stock)
	if err != nil {
		return Comparison{}, err
	}
	left, right := align.Align(vol, closes, nil)
	left.Name = kw.Label + " News Volume"
	right.Name = defaultCompany + " Close Price"

	return Comparison{
		Name:   Slug(kw.Label) + "_news_vs_stock",
		Save:   false,
		Window: alignedWindow(left, right),
		Spec: chart.Spec{
			Title:      fmt.Sprintf("%s News Volume vs %s Stock Price", kw.Label, defaultCompany),
			Left:       left,
			Right:      right,
			LeftLabel:  kw.Label + " News Volume",
			RightLabel: ticker + " Stock Price",
			LeftColor:  chart.Blue,
			RightColor: chart.Purple,
			LeftWidth:  emphasisLineW,
			RightWidth: emphasisLineW,
			WidthIn:    wideWidthIn,
			HeightIn:   wideHeightIn,
			DPI:        dpi,
		},
	}, nil
}

// TrendsVsStock builds one chart per keyword comparing search interest with
// the closing price inside a fixed window. Every keyword column must exist.
func TrendsVsStock(keywords []string, trends, stock *model.Table, window align.Window, ticker string, dpi float64) ([]Comparison, error) {
	closes, err := closeSeries(stock)
	if err != nil {
		return nil, err
	}
	series := make([]model.Series, len(keywords))
	for i, kw := range keywords {
		s, err := trends.Series(kw)
		if err != nil {
			return nil, fmt.Errorf("trends table: %w", err)
		}
		series[i] = s
	}

	right := align.Clip(closes, window)
	right.Name = ticker + " Stock Price"
	period := fmt.Sprintf("(%s ~ %s)", window.Start.Format("2006-01"), window.End.Format("2006-01"))

	out := make([]Comparison, 0, len(keywords))
	for i, kw := range keywords {
		left := align.Clip(series[i], window)
		left.Name = "Google Trends: " + kw
		out = append(out, Comparison{
			Name:   kw + "_vs_" + strings.ToLower(ticker),
			Save:   true,
			Window: alignedWindow(left, right),
			Spec: chart.Spec{
				Title:      fmt.Sprintf("%s Google Trends vs %s Stock Price %s", kw, defaultCompany, period),
				Left:       left,
				Right:      right.Clone(),
				LeftLabel:  left.Name,
				RightLabel: right.Name,
				LeftColor:  chart.Red,
				RightColor: chart.Purple,
				LeftWidth:  emphasisLineW,
				RightWidth: emphasisLineW,
				WidthIn:    wideWidthIn,
				HeightIn:   wideHeightIn,
				DPI:        dpi,
			},
		})
	}
	return out, nil
}
