package report

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"HypeChart/internal/model"
	"HypeChart/internal/notifier"
)

// Sink receives every rendered chart.
type Sink interface {
	Name() string
	Publish(ctx context.Context, c model.ChartResult, png []byte) error
}

// FileSink writes saved charts to a results directory.
type FileSink struct {
	Dir string
}

// NewFileSink creates a sink rooted at dir. The directory is created on the
// first write.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (f *FileSink) Name() string { return "file" }

// Path returns the output path for a chart name.
func (f *FileSink) Path(name string) string {
	return filepath.Join(f.Dir, name+".png")
}

// Publish writes the chart when it has an output path.
func (f *FileSink) Publish(_ context.Context, c model.ChartResult, png []byte) error {
	if !c.Saved() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	if err := os.WriteFile(c.Path, png, 0o644); err != nil {
		return fmt.Errorf("write chart %s: %w", c.Path, err)
	}
	log.Printf("[INFO] chart saved: %s", c.Path)
	return nil
}

// PhotoSender uploads images to a chat.
type PhotoSender interface {
	SendPhotoWithRetry(ctx context.Context, caption, filename string, png []byte, maxRetries int) error
}

// TelegramSink posts each chart to a Telegram chat.
type TelegramSink struct {
	Sender  PhotoSender
	Retries int
}

func (t *TelegramSink) Name() string { return "telegram" }

func (t *TelegramSink) Publish(ctx context.Context, c model.ChartResult, png []byte) error {
	return t.Sender.SendPhotoWithRetry(ctx, notifier.FormatChartCaption(c), c.Name+".png", png, t.Retries)
}

// LogSink logs the chart instead of displaying it.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Publish(_ context.Context, c model.ChartResult, png []byte) error {
	log.Printf("[INFO] chart %s rendered: %dx%d px, %d bytes, %d/%d points",
		c.Name, c.Width, c.Height, len(png), c.LeftPoints, c.RightPoints)
	return nil
}
