package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrColumnNotFound is returned when a table lacks a requested value column.
var ErrColumnNotFound = errors.New("column not found")

// Point is a single dated observation. Value is NaN for upstream gaps.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a named sequence of points with non-decreasing dates.
type Series struct {
	Name   string
	Points []Point
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Points) }

// Span returns the first and last dates. ok is false for an empty series.
func (s Series) Span() (start, end time.Time, ok bool) {
	if len(s.Points) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Points[0].Date, s.Points[len(s.Points)-1].Date, true
}

// Clone returns a deep copy that shares no backing array with s.
func (s Series) Clone() Series {
	out := Series{Name: s.Name, Points: make([]Point, len(s.Points))}
	copy(out.Points, s.Points)
	return out
}

// Dates returns the point dates in order.
func (s Series) Dates() []time.Time {
	ds := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		ds[i] = p.Date
	}
	return ds
}

// Values returns the point values in order.
func (s Series) Values() []float64 {
	vs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vs[i] = p.Value
	}
	return vs
}

// Valid returns a copy without NaN or infinite values.
func (s Series) Valid() Series {
	out := Series{Name: s.Name, Points: make([]Point, 0, len(s.Points))}
	for _, p := range s.Points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// Row is one table row: a date and one value per column.
type Row struct {
	Date   time.Time
	Values []float64
}

// Table is a set of value columns sharing a date column.
type Table struct {
	DateColumn string
	Columns    []string
	Rows       []Row
}

// NewTable creates an empty table with the given header.
func NewTable(dateColumn string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{DateColumn: dateColumn, Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row. Missing trailing values are filled with NaN.
func (t *Table) Append(date time.Time, values ...float64) {
	vs := make([]float64, len(t.Columns))
	for i := range vs {
		if i < len(values) {
			vs[i] = values[i]
		} else {
			vs[i] = math.NaN()
		}
	}
	t.Rows = append(t.Rows, Row{Date: date, Values: vs})
}

// ColumnIndex looks up a value column, exact match first, then case-insensitive.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i, true
		}
	}
	return -1, false
}

// Series extracts one column as a series named after the column.
func (t *Table) Series(column string) (Series, error) {
	idx, ok := t.ColumnIndex(column)
	if !ok {
		return Series{}, fmt.Errorf("%w: %q (have %s)", ErrColumnNotFound, column, strings.Join(t.Columns, ", "))
	}
	s := Series{Name: t.Columns[idx], Points: make([]Point, len(t.Rows))}
	for i, r := range t.Rows {
		s.Points[i] = Point{Date: r.Date, Value: r.Values[idx]}
	}
	return s, nil
}

// SortByDate orders rows chronologically, keeping the order of equal dates.
func (t *Table) SortByDate() {
	sort.SliceStable(t.Rows, func(i, j int) bool { return t.Rows[i].Date.Before(t.Rows[j].Date) })
}

// Span returns the first and last row dates.
func (t *Table) Span() (start, end time.Time, ok bool) {
	if len(t.Rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Rows[0].Date, t.Rows[len(t.Rows)-1].Date, true
}
