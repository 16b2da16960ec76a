package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"HypeChart/internal/model"
	"HypeChart/internal/recorder"
)

func newTestNotifier(t *testing.T, h http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestTelegramNotifier_Send(t *testing.T) {
	payloads := make(chan map[string]string, 1)
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var p map[string]string
		json.NewDecoder(r.Body).Decode(&p)
		payloads <- p
	})
	if err := n.Send("hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got := <-payloads
	if got["chat_id"] != "42" || got["text"] != "hello" || got["parse_mode"] != "HTML" {
		t.Errorf("payload = %v", got)
	}
}

func TestTelegramNotifier_SendPhoto(t *testing.T) {
	png := []byte("\x89PNG fake")
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendPhoto" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if r.FormValue("chat_id") != "42" || r.FormValue("caption") != "<b>chart</b>" {
			t.Errorf("fields = %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("photo: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "ai.png" || string(data) != string(png) {
			t.Errorf("file %s = %q", hdr.Filename, data)
		}
	})
	if err := n.SendPhoto("<b>chart</b>", "ai.png", png); err != nil {
		t.Fatalf("SendPhoto: %v", err)
	}
}

func TestTelegramNotifier_APIError(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"ok":false}`)
	})
	err := n.Send("x")
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	backoffUnit = time.Millisecond
	defer func() { backoffUnit = time.Second }()

	var calls int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	if err := n.SendWithRetry(context.Background(), "x", 2); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	backoffUnit = time.Millisecond
	defer func() { backoffUnit = time.Second }()

	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if err := n.SendWithRetry(context.Background(), "x", 1); err == nil {
		t.Error("expected error after retries")
	}
}

func TestFormatRunSummary(t *testing.T) {
	start := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	s := &model.RunSummary{
		RunID:      "abc",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Outcomes: []model.Outcome{
			{Source: "stock", Key: "NVDA", Status: model.StatusCached, Rows: 690},
			{Source: "news", Key: "deepseek", Status: model.StatusSkipped, Err: errors.New("invalid <response>")},
		},
		Charts: []model.ChartResult{
			{Name: "news_vs_stock_ai", Path: "results/news_vs_stock_ai.png"},
			{Name: "ai_news_vs_stock"},
		},
	}
	msg := FormatRunSummary(s)
	for _, want := range []string{"abc", "stock[NVDA] CACHED (690 rows)", "invalid &lt;response&gt;", "results/news_vs_stock_ai.png", "display only", "1m30s"} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "aborted") {
		t.Error("successful run reported as aborted")
	}
}

func TestFormatLastRun(t *testing.T) {
	if got := FormatLastRun(nil); !strings.Contains(got, "No runs") {
		t.Errorf("nil run = %q", got)
	}
	got := FormatLastRun(&recorder.RunRecord{ID: "r1", Status: recorder.RunAborted, StartedAt: time.Now(), Error: "stock failed"})
	if !strings.Contains(got, "ABORTED") || !strings.Contains(got, "stock failed") {
		t.Errorf("unexpected status: %s", got)
	}
}
