package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"HypeChart/internal/model"
	"HypeChart/internal/recorder"
)

var statusIcon = map[model.FetchStatus]string{
	model.StatusFetched: "⬇️",
	model.StatusCached:  "💾",
	model.StatusSkipped: "⚠️",
	model.StatusFailed:  "❌",
}

// FormatRunSummary formats a run summary into a Telegram message.
func FormatRunSummary(s *model.RunSummary) string {
	var b strings.Builder

	head := "📊 <b>HypeChart run</b>"
	if s.Err != nil {
		head = "❌ <b>HypeChart run aborted</b>"
	}
	b.WriteString(fmt.Sprintf("%s | %s\n", head, s.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("ID: <code>%s</code>\n", s.RunID))
	if !s.FinishedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second)))
	}

	b.WriteString("\n<b>Sources:</b>\n")
	for _, o := range s.Outcomes {
		line := fmt.Sprintf("  %s %s[%s] %s", statusIcon[o.Status], o.Source, html.EscapeString(o.Key), o.Status)
		if o.OK() {
			line += fmt.Sprintf(" (%d rows)", o.Rows)
		}
		if o.Err != nil {
			line += ": " + html.EscapeString(o.Err.Error())
		}
		b.WriteString(line + "\n")
	}

	if len(s.Charts) > 0 {
		b.WriteString(fmt.Sprintf("\n<b>Charts (%d):</b>\n", len(s.Charts)))
		for _, c := range s.Charts {
			where := "display only"
			if c.Saved() {
				where = html.EscapeString(c.Path)
			}
			b.WriteString(fmt.Sprintf("  • %s → %s\n", html.EscapeString(c.Name), where))
		}
	}

	if s.Err != nil {
		b.WriteString(fmt.Sprintf("\nError: %s\n", html.EscapeString(s.Err.Error())))
	}
	return b.String()
}

// FormatChartCaption formats the caption sent with a chart image.
func FormatChartCaption(c model.ChartResult) string {
	caption := fmt.Sprintf("<b>%s</b>", html.EscapeString(c.Title))
	if !c.WindowStart.IsZero() {
		caption += fmt.Sprintf("\n%s ~ %s", c.WindowStart.Format("2006-01-02"), c.WindowEnd.Format("2006-01-02"))
	}
	return caption
}

// FormatLastRun formats the most recent recorded run for the /status command.
func FormatLastRun(run *recorder.RunRecord) string {
	if run == nil {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("📦 <b>Last run</b>\n\n")
	b.WriteString(fmt.Sprintf("ID: <code>%s</code>\n", run.ID))
	b.WriteString(fmt.Sprintf("Status: %s\n", run.Status))
	b.WriteString(fmt.Sprintf("Started: %s\n", run.StartedAt.Format("2006-01-02 15:04")))
	if !run.FinishedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Finished: %s\n", run.FinishedAt.Format("2006-01-02 15:04")))
	}
	if run.Error != "" {
		b.WriteString(fmt.Sprintf("Error: %s\n", html.EscapeString(run.Error)))
	}
	return b.String()
}
