package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"HypeChart/internal/model"
	"HypeChart/internal/notifier"
	"HypeChart/internal/recorder"
	"HypeChart/internal/report"
)

// RunFunc performs one fetch-and-render run.
type RunFunc func(ctx context.Context) (*model.RunSummary, error)

// Scheduler manages the periodic refresh task.
type Scheduler struct {
	Cron     *cron.Cron
	Run      RunFunc
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. Overlapping triggers are skipped
// while a run is still in progress.
func NewScheduler(ctx context.Context, run RunFunc, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Run:      run,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// Register registers the refresh task on refreshCron.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately.
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if s.Ctx.Err() != nil {
		return
	}
	log.Println("[INFO] running refresh task")
	summary, err := s.Run(s.Ctx)
	switch {
	case errors.Is(err, report.ErrRunInProgress):
		log.Println("[WARN] refresh skipped, a run is already in progress")
	case err != nil:
		log.Printf("[ERROR] refresh: %v", err)
	case summary != nil:
		log.Printf("[INFO] refresh done: %d charts", len(summary.Charts))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	cmd := ""
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	switch cmd {
	case "/run":
		go s.refreshTask()
		return "⏳ Refresh started."
	case "/status":
		last, err := s.Recorder.LastRun()
		if err != nil {
			return fmt.Sprintf("❌ status unavailable: %v", err)
		}
		return notifier.FormatLastRun(last)
	default:
		return "Available commands:\n• /run - refresh data and charts\n• /status - last run"
	}
}
