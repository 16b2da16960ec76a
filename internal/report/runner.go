package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"HypeChart/internal/align"
	"HypeChart/internal/chart"
	"HypeChart/internal/collector"
	"HypeChart/internal/model"
	"HypeChart/internal/notifier"
	"HypeChart/internal/recorder"
)

// ErrSourceFailed aborts a run when a source in abort mode fails.
var ErrSourceFailed = errors.New("source failed")

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("run already in progress")

// Summary is the result of one run.
type Summary = model.RunSummary

// TextSender delivers the run summary as a text message.
type TextSender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options configures the chart set.
type Options struct {
	TrendCompare []string
	TrendWindow  align.Window
	DPI          float64
	// NotifyRetries bounds retries for summary messages.
	NotifyRetries int
}

// Runner executes fetch-then-render runs.
type Runner struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Files     *FileSink
	Display   []Sink
	Notifier  TextSender // optional
	Options   Options

	running  sync.Mutex
	initOnce sync.Once
	initErr  error

	mu   sync.Mutex
	last *Summary
}

// NewRunner creates a runner. Display defaults to a LogSink.
func NewRunner(col *collector.Collector, rec recorder.Recorder, files *FileSink, display []Sink, opts Options) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if len(display) == 0 {
		display = []Sink{LogSink{}}
	}
	return &Runner{
		Collector: col,
		Recorder:  rec,
		Files:     files,
		Display:   display,
		Options:   opts,
	}
}

// Init prepares the cache directory. It runs at most once.
func (r *Runner) Init() error {
	r.initOnce.Do(func() {
		if err := r.Collector.Store.Init(); err != nil {
			r.initErr = fmt.Errorf("init cache: %w", err)
		}
	})
	return r.initErr
}

// Last returns the summary of the most recent run in this process.
func (r *Runner) Last() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Run fetches all sources and renders the comparison charts. The summary is
// returned even when the run fails.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if !r.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.running.Unlock()

	s := &Summary{RunID: uuid.NewString(), StartedAt: time.Now()}
	log.Printf("[INFO] run %s started", s.RunID)
	if err := r.Recorder.RecordRunStart(&recorder.RunRecord{ID: s.RunID, StartedAt: s.StartedAt}); err != nil {
		log.Printf("[ERROR] record run start: %v", err)
	}

	s.Err = r.run(ctx, s)
	s.FinishedAt = time.Now()
	r.finish(ctx, s)
	return s, s.Err
}

func (r *Runner) run(ctx context.Context, s *Summary) error {
	if err := r.Init(); err != nil {
		return err
	}

	stock, out := r.Collector.Stock(ctx)
	if err := r.addOutcome(s, out); err != nil {
		return err
	}
	trends, out := r.Collector.Trends(ctx)
	if err := r.addOutcome(s, out); err != nil {
		return err
	}
	news, outs := r.Collector.News(ctx)
	for _, o := range outs {
		if err := r.addOutcome(s, o); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return r.render(ctx, s, stock, trends, news)
}

func (r *Runner) render(ctx context.Context, s *Summary, stock, trends *model.Table, news map[string]*model.Table) error {
	if stock == nil {
		log.Printf("[WARN] no stock data, skipping all charts")
		return nil
	}
	ticker := r.Collector.Options.Stock.Ticker
	keywords := r.Collector.Options.News.Keywords
	dpi := r.Options.DPI

	for _, kw := range keywords {
		tbl, ok := news[kw.Query]
		if !ok {
			log.Printf("[WARN] no news data for %q, skipping its chart", kw.Query)
			continue
		}
		cmp, err := NewsVsStock(kw, tbl, stock, ticker, dpi)
		if err != nil {
			return err
		}
		if err := r.publish(ctx, s, cmp); err != nil {
			return err
		}
	}

	if len(keywords) > 0 {
		kw := keywords[0]
		if tbl, ok := news[kw.Query]; ok {
			cmp, err := HeadlineNewsVsStock(kw, tbl, stock, ticker, dpi)
			if err != nil {
				return err
			}
			if err := r.publish(ctx, s, cmp); err != nil {
				return err
			}
		} else {
			log.Printf("[WARN] no news data for %q, skipping headline chart", kw.Query)
		}
	}

	if len(r.Options.TrendCompare) == 0 {
		return nil
	}
	if trends == nil {
		log.Printf("[WARN] no trends data, skipping trend charts")
		return nil
	}
	cmps, err := TrendsVsStock(r.Options.TrendCompare, trends, stock, r.Options.TrendWindow, ticker, dpi)
	if err != nil {
		return err
	}
	for _, cmp := range cmps {
		if err := r.publish(ctx, s, cmp); err != nil {
			return err
		}
	}
	return nil
}

// publish renders one comparison, saves it when required and hands it to the
// display sinks. Display failures are logged and do not fail the run.
func (r *Runner) publish(ctx context.Context, s *Summary, cmp Comparison) error {
	log.Printf("[INFO] plotting %s...", cmp.Name)
	if cmp.Spec.Left.Len() == 0 || cmp.Spec.Right.Len() == 0 {
		log.Printf("[WARN] %s has an empty series after alignment", cmp.Name)
	}
	png, err := chart.RenderBytes(cmp.Spec)
	if err != nil {
		return fmt.Errorf("render %s: %w", cmp.Name, err)
	}

	w, h := cmp.Spec.Size()
	res := model.ChartResult{
		Name:        cmp.Name,
		Title:       cmp.Spec.Title,
		Bytes:       len(png),
		Width:       w,
		Height:      h,
		LeftPoints:  cmp.Spec.Left.Len(),
		RightPoints: cmp.Spec.Right.Len(),
		WindowStart: cmp.Window.Start,
		WindowEnd:   cmp.Window.End,
	}
	if cmp.Save && r.Files != nil {
		res.Path = r.Files.Path(cmp.Name)
		if err := r.Files.Publish(ctx, res, png); err != nil {
			return err
		}
	}

	for _, sink := range r.Display {
		if err := sink.Publish(ctx, res, png); err != nil {
			log.Printf("[WARN] %s sink failed for %s: %v", sink.Name(), cmp.Name, err)
		}
	}

	s.Charts = append(s.Charts, res)
	if err := r.Recorder.RecordChart(s.RunID, &recorder.ChartRecord{
		Name:        res.Name,
		Path:        res.Path,
		Bytes:       res.Bytes,
		LeftPoints:  res.LeftPoints,
		RightPoints: res.RightPoints,
		WindowStart: res.WindowStart,
		WindowEnd:   res.WindowEnd,
	}); err != nil {
		log.Printf("[ERROR] record chart: %v", err)
	}
	return nil
}

// addOutcome records o and returns ErrSourceFailed when it aborts the run.
func (r *Runner) addOutcome(s *Summary, o model.Outcome) error {
	s.Outcomes = append(s.Outcomes, o)
	if err := r.Recorder.RecordOutcome(s.RunID, o); err != nil {
		log.Printf("[ERROR] record outcome: %v", err)
	}
	if o.Status == model.StatusFailed {
		return fmt.Errorf("%w: %v", ErrSourceFailed, o)
	}
	return nil
}

func (r *Runner) finish(ctx context.Context, s *Summary) {
	run := &recorder.RunRecord{ID: s.RunID, FinishedAt: s.FinishedAt, Status: recorder.RunSucceeded}
	if s.Err != nil {
		run.Status = recorder.RunAborted
		run.Error = s.Err.Error()
		log.Printf("[ERROR] run %s aborted: %v", s.RunID, s.Err)
	} else {
		log.Printf("[INFO] run %s finished: %d charts, %d fetched, %d cached, %d skipped",
			s.RunID, len(s.Charts), s.Count(model.StatusFetched), s.Count(model.StatusCached), s.Count(model.StatusSkipped))
	}
	if err := r.Recorder.RecordRunEnd(run); err != nil {
		log.Printf("[ERROR] record run end: %v", err)
	}

	r.mu.Lock()
	r.last = s
	r.mu.Unlock()

	if r.Notifier != nil && ctx.Err() == nil {
		if err := r.Notifier.SendWithRetry(ctx, notifier.FormatRunSummary(s), r.Options.NotifyRetries); err != nil {
			log.Printf("[ERROR] send run summary: %v", err)
		}
	}
}
