package chart

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"HypeChart/internal/model"
)

func dailySeries(name string, start time.Time, values ...float64) model.Series {
	s := model.Series{Name: name}
	for i, v := range values {
		s.Points = append(s.Points, model.Point{Date: start.AddDate(0, 0, i), Value: v})
	}
	return s
}

func sampleSpec() Spec {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return Spec{
		Title:      "AI News vs NVIDIA Stock Price",
		Left:       dailySeries("AI News Volume", start, 10, 12, math.NaN(), 18, 15),
		Right:      dailySeries("NVDA Close Price", start, 130, 128, 135, 140, 138),
		LeftLabel:  "News Volume",
		RightLabel: "NVDA Stock Price",
		LeftColor:  Blue,
		RightColor: Purple,
		WidthIn:    12,
		HeightIn:   5,
		DPI:        50,
	}
}

func TestRender_ProducesPNGWithFixedAspect(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleSpec()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 250 {
		t.Errorf("size = %dx%d, want 600x250", cfg.Width, cfg.Height)
	}
}

func TestSpec_SizeDefaultDPI(t *testing.T) {
	w, h := Spec{WidthIn: 14, HeightIn: 6}.Size()
	if w != 4200 || h != 1800 {
		t.Errorf("size = %dx%d", w, h)
	}
}

func TestRender_DegenerateInputs(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]func(*Spec){
		"empty left":   func(s *Spec) { s.Left = model.Series{Name: "empty"} },
		"both empty":   func(s *Spec) { s.Left, s.Right = model.Series{Name: "a"}, model.Series{Name: "b"} },
		"all NaN":      func(s *Spec) { s.Left = dailySeries("nan", start, math.NaN(), math.NaN()) },
		"single point": func(s *Spec) { s.Right = dailySeries("one", start, 100) },
		"flat values":  func(s *Spec) { s.Left = dailySeries("flat", start, 5, 5, 5) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spec := sampleSpec()
			mutate(&spec)
			png, err := RenderBytes(spec)
			if err != nil {
				t.Fatalf("RenderBytes: %v", err)
			}
			if len(png) == 0 {
				t.Error("expected non-empty image")
			}
		})
	}
}

func TestRender_InvalidSize(t *testing.T) {
	spec := sampleSpec()
	spec.WidthIn = 0
	if _, err := RenderBytes(spec); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestRenderFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "news_vs_stock_ai.png")
	if err := RenderFile(path, sampleSpec()); err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("expected written file, err=%v", err)
	}
}
