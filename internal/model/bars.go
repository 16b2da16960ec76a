package model

import "time"

// OHLCV represents a single daily stock bar.
type OHLCV struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Column names of a persisted stock table.
const (
	StockDateColumn = "Date"
	CloseColumn     = "Close"
)

// BarsToTable converts bars into a Date,Open,High,Low,Close,Volume table.
func BarsToTable(bars []OHLCV) *Table {
	t := NewTable(StockDateColumn, "Open", "High", "Low", CloseColumn, "Volume")
	for _, b := range bars {
		t.Append(b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	return t
}

// VolumePoint is one news-volume timeline record.
type VolumePoint struct {
	Date  time.Time
	Value float64
	Norm  float64
}
