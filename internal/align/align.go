// Package align restricts time series to a shared date window.
package align

import (
	"fmt"
	"time"

	"HypeChart/internal/model"
)

// Window is an inclusive date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a naive window and rejects end before start.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: Naive(start), End: Naive(end)}
	if w.End.Before(w.Start) {
		return Window{}, fmt.Errorf("invalid window: end %s before start %s", FormatDate(w.End), FormatDate(w.Start))
	}
	return w, nil
}

// Contains reports whether t lies within the window, both ends included.
func (w Window) Contains(t time.Time) bool {
	t = Naive(t)
	return !t.Before(w.Start) && !t.After(w.End)
}

// IsEmpty reports whether the window contains no instant.
func (w Window) IsEmpty() bool {
	return w.End.Before(w.Start)
}

// Intersect returns the overlap of two windows.
func (w Window) Intersect(o Window) (Window, bool) {
	out := Window{Start: maxTime(w.Start, o.Start), End: minTime(w.End, o.End)}
	if out.IsEmpty() {
		return Window{}, false
	}
	return out, true
}

func (w Window) String() string {
	return FormatDate(w.Start) + " ~ " + FormatDate(w.End)
}

// Overlap returns [max(starts), min(ends)] of the given series. It is false
// when any series is empty or the ranges do not meet.
func Overlap(series ...model.Series) (Window, bool) {
	if len(series) == 0 {
		return Window{}, false
	}
	var out Window
	for i, s := range series {
		start, end, ok := s.Span()
		if !ok {
			return Window{}, false
		}
		start, end = Naive(start), Naive(end)
		if i == 0 {
			out = Window{Start: start, End: end}
			continue
		}
		out.Start = maxTime(out.Start, start)
		out.End = minTime(out.End, end)
	}
	if out.IsEmpty() {
		return Window{}, false
	}
	return out, true
}

// Clip returns a new series holding the points of s inside w.
func Clip(s model.Series, w Window) model.Series {
	out := model.Series{Name: s.Name, Points: make([]model.Point, 0, len(s.Points))}
	for _, p := range s.Points {
		if w.Contains(p.Date) {
			out.Points = append(out.Points, model.Point{Date: Naive(p.Date), Value: p.Value})
		}
	}
	return out
}

// Align restricts a and b to their common date range, further intersected
// with fixed when it is non-nil. Inputs are never modified; with no overlap
// two empty series are returned.
func Align(a, b model.Series, fixed *Window) (model.Series, model.Series) {
	w, ok := Overlap(a, b)
	if ok && fixed != nil {
		w, ok = w.Intersect(*fixed)
	}
	if !ok {
		return model.Series{Name: a.Name, Points: []model.Point{}}, model.Series{Name: b.Name, Points: []model.Point{}}
	}
	return Clip(a, w), Clip(b, w)
}

// Span returns the window covered by s.
func Span(s model.Series) (Window, bool) {
	start, end, ok := s.Span()
	if !ok {
		return Window{}, false
	}
	return Window{Start: Naive(start), End: Naive(end)}, true
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
