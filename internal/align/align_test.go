package align

import (
	"math"
	"testing"
	"time"

	"HypeChart/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// dailySeries builds one point per day from start to end inclusive.
func dailySeries(name, start, end string) model.Series {
	s := model.Series{Name: name}
	for d := day(start); !d.After(day(end)); d = d.AddDate(0, 0, 1) {
		s.Points = append(s.Points, model.Point{Date: d, Value: float64(d.YearDay())})
	}
	return s
}

func TestAlign_StockAndNewsScenario(t *testing.T) {
	stock := dailySeries("Close", "2023-01-03", "2025-09-30")
	news := dailySeries("news", "2023-06-01", "2025-12-31")

	a, b := Align(stock, news, nil)

	for _, s := range []model.Series{a, b} {
		start, end, ok := s.Span()
		if !ok {
			t.Fatalf("%s: expected non-empty series", s.Name)
		}
		if !start.Equal(day("2023-06-01")) {
			t.Errorf("%s: start = %s, want 2023-06-01", s.Name, FormatDate(start))
		}
		if !end.Equal(day("2025-09-30")) {
			t.Errorf("%s: end = %s, want 2025-09-30", s.Name, FormatDate(end))
		}
	}
	if a.Len() != b.Len() {
		t.Errorf("daily series over the same window should have equal length: %d vs %d", a.Len(), b.Len())
	}
}

func TestAlign_FixedWindowScenario(t *testing.T) {
	trends := dailySeries("ChatGPT", "2023-01-01", "2025-10-16")
	stock := dailySeries("Close", "2023-01-03", "2025-09-30")
	fixed, err := NewWindow(day("2025-01-01"), day("2025-03-01"))
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	a, _ := Align(trends, stock, &fixed)

	w, ok := Span(a)
	if !ok {
		t.Fatal("expected non-empty result")
	}
	if !w.Start.Equal(fixed.Start) || !w.End.Equal(fixed.End) {
		t.Errorf("window = %s, want %s", w, fixed)
	}
}

func TestAlign_DropsNoInWindowRows(t *testing.T) {
	a := dailySeries("a", "2024-01-01", "2024-01-31")
	b := dailySeries("b", "2024-01-10", "2024-02-15")

	gotA, gotB := Align(a, b, nil)

	if gotA.Len() != 22 {
		t.Errorf("a: got %d points, want 22", gotA.Len())
	}
	if gotB.Len() != 22 {
		t.Errorf("b: got %d points, want 22", gotB.Len())
	}
	w := Window{Start: day("2024-01-10"), End: day("2024-01-31")}
	for _, p := range append(gotA.Points, gotB.Points...) {
		if !w.Contains(p.Date) {
			t.Errorf("point %s outside %s", FormatDate(p.Date), w)
		}
	}
}

func TestAlign_NoOverlapReturnsEmpty(t *testing.T) {
	a := dailySeries("a", "2023-01-01", "2023-01-31")
	b := dailySeries("b", "2024-01-01", "2024-01-31")

	gotA, gotB := Align(a, b, nil)

	if gotA.Len() != 0 || gotB.Len() != 0 {
		t.Errorf("expected two empty series, got %d and %d", gotA.Len(), gotB.Len())
	}
	if gotA.Name != "a" || gotB.Name != "b" {
		t.Errorf("names not preserved: %q, %q", gotA.Name, gotB.Name)
	}
}

func TestAlign_EmptyInput(t *testing.T) {
	a := dailySeries("a", "2023-01-01", "2023-01-31")
	gotA, gotB := Align(a, model.Series{Name: "empty"}, nil)
	if gotA.Len() != 0 || gotB.Len() != 0 {
		t.Errorf("expected empty results, got %d and %d", gotA.Len(), gotB.Len())
	}
}

func TestAlign_FixedWindowOutsideOverlap(t *testing.T) {
	a := dailySeries("a", "2023-01-01", "2023-12-31")
	b := dailySeries("b", "2023-06-01", "2023-12-31")
	fixed := Window{Start: day("2025-01-01"), End: day("2025-03-01")}

	gotA, gotB := Align(a, b, &fixed)

	if gotA.Len() != 0 || gotB.Len() != 0 {
		t.Errorf("expected empty results, got %d and %d", gotA.Len(), gotB.Len())
	}
}

func TestAlign_DoesNotAliasInputs(t *testing.T) {
	a := dailySeries("a", "2024-01-01", "2024-01-10")
	b := dailySeries("b", "2024-01-01", "2024-01-10")

	gotA, _ := Align(a, b, nil)
	gotA.Points[0].Value = -1

	if a.Points[0].Value == -1 {
		t.Error("Align result shares storage with its input")
	}
}

func TestAlign_KeepsNaNValues(t *testing.T) {
	a := dailySeries("a", "2024-01-01", "2024-01-05")
	a.Points[2].Value = math.NaN()
	b := dailySeries("b", "2024-01-01", "2024-01-05")

	gotA, _ := Align(a, b, nil)

	if gotA.Len() != 5 {
		t.Fatalf("got %d points, want 5", gotA.Len())
	}
	if !math.IsNaN(gotA.Points[2].Value) {
		t.Errorf("expected NaN gap to survive alignment, got %v", gotA.Points[2].Value)
	}
}

func TestAlign_StripsTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	a := model.Series{Name: "a"}
	for i := 0; i < 5; i++ {
		a.Points = append(a.Points, model.Point{Date: time.Date(2024, 1, 1+i, 9, 30, 0, 0, ny), Value: 1})
	}
	b := dailySeries("b", "2023-12-01", "2024-02-01")

	gotA, gotB := Align(a, b, nil)

	for _, p := range append(gotA.Points, gotB.Points...) {
		if p.Date.Location() != time.UTC {
			t.Fatalf("date %v carries location %v", p.Date, p.Date.Location())
		}
	}
	if gotA.Len() != 5 {
		t.Errorf("got %d points, want 5", gotA.Len())
	}
}

func TestOverlap_ThreeSeries(t *testing.T) {
	w, ok := Overlap(
		dailySeries("a", "2023-01-01", "2023-12-31"),
		dailySeries("b", "2023-03-01", "2024-12-31"),
		dailySeries("c", "2022-01-01", "2023-10-15"),
	)
	if !ok {
		t.Fatal("expected overlap")
	}
	if !w.Start.Equal(day("2023-03-01")) || !w.End.Equal(day("2023-10-15")) {
		t.Errorf("window = %s, want 2023-03-01 ~ 2023-10-15", w)
	}
}

func TestNewWindow_RejectsReversed(t *testing.T) {
	if _, err := NewWindow(day("2025-03-01"), day("2025-01-01")); err == nil {
		t.Error("expected error for end before start")
	}
}

func TestWindow_ContainsInclusive(t *testing.T) {
	w := Window{Start: day("2025-01-01"), End: day("2025-03-01")}
	if !w.Contains(day("2025-01-01")) || !w.Contains(day("2025-03-01")) {
		t.Error("window should include both ends")
	}
	if w.Contains(day("2025-03-02")) {
		t.Error("window should exclude dates after the end")
	}
}
