package indexer

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"media-indexer/internal/extractor"
)

// Reporter receives human-readable progress events from a run.
type Reporter interface {
	// FileDone is called once per finished file, after it was recorded.
	FileDone(res extractor.Result, snap Snapshot)
	// Committed is called after each successful batch write.
	Committed(b BatchReport)
	// Finished is called once when the run reaches a terminal state.
	Finished(s Summary)
}

// Summary is the final account of a run.
type Summary struct {
	State State
	Stats RunStatistics
	// Elapsed is the wall-clock time from run start.
	Elapsed time.Duration
	// Documents is the store's document count, or -1 if it could not be read.
	Documents int64
	// Discarded is the number of buffered documents dropped on interrupt.
	Discarded int
	Err       error
}

// FilesPerMinute returns processed files per minute of wall-clock time.
func (s Summary) FilesPerMinute() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Stats.Processed) / s.Elapsed.Minutes()
}

type nopReporter struct{}

func (nopReporter) FileDone(extractor.Result, Snapshot) {}
func (nopReporter) Committed(BatchReport)               {}
func (nopReporter) Finished(Summary)                    {}

// Console writes one progress line per file and per batch to out, and the
// final summary to diag.
type Console struct {
	out  io.Writer
	diag io.Writer

	progress *color.Color
	skipped  *color.Color
	failed   *color.Color
	commit   *color.Color
	header   *color.Color
	bad      *color.Color
}

// NewConsole returns a Console. Colour is used only when out is a terminal
// and NO_COLOR is unset.
func NewConsole(out, diag io.Writer) *Console {
	c := &Console{
		out:      out,
		diag:     diag,
		progress: color.New(color.FgCyan),
		skipped:  color.New(color.FgHiBlack),
		failed:   color.New(color.FgRed),
		commit:   color.New(color.FgGreen, color.Bold),
		header:   color.New(color.Bold),
		bad:      color.New(color.FgRed, color.Bold),
	}
	if !useColor(out) {
		for _, col := range []*color.Color{c.progress, c.skipped, c.failed, c.commit, c.header, c.bad} {
			col.DisableColor()
		}
	}
	return c
}

func useColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

const mb = 1024 * 1024

// FileDone implements Reporter.
func (c *Console) FileDone(res extractor.Result, snap Snapshot) {
	head := fmt.Sprintf("Progress: %d/%d (%.1f%%)", snap.Processed, snap.Discovered, snap.Percent())
	rate := fmt.Sprintf("Avg processing: %.2fs - Overall rate: %.2f docs/sec total",
		snap.AvgDuration.Seconds(), snap.Rate)

	file := fileDetail(res)

	switch res.Status {
	case extractor.StatusSkipped:
		c.skipped.Fprintf(c.out, "%s - Skipped %s (%s) - %s - %s\n", head, res.Path, res.Reason, file, rate)
	case extractor.StatusFailed:
		c.failed.Fprintf(c.out, "%s - Failed %s - %s - %s\n", head, res.Path, file, rate)
	default:
		c.progress.Fprintf(c.out, "%s - %s - %s\n", head, file, rate)
	}
}

// fileDetail renders size, duration and the stage breakdown when any stage ran.
func fileDetail(res extractor.Result) string {
	detail := fmt.Sprintf("File size: %.2fMB - File took: %.2fs", float64(res.Size)/mb, res.Duration.Seconds())
	if len(res.Timings) > 0 {
		detail += " (" + res.Timings.String() + ")"
	}
	return detail
}

// Committed implements Reporter.
func (c *Console) Committed(b BatchReport) {
	head := fmt.Sprintf("Committed %d new documents", b.Documents)
	if b.Final {
		head = fmt.Sprintf("Committed final %d documents", b.Documents)
	}
	c.commit.Fprintf(c.out, "%s (%.2fMB) in %.2fs (%.1f docs/sec) - completed %d of %d - %.1f%% complete\n",
		head, float64(b.Bytes)/mb, b.Duration.Seconds(), b.Rate(), b.Completed, b.Total, b.Percent())
}

// Finished implements Reporter.
func (c *Console) Finished(s Summary) {
	switch s.State {
	case StateCompleted:
		c.header.Fprintln(c.diag, "\nFinal Results:")
	case StateInterrupted:
		c.bad.Fprintf(c.diag, "\nRun interrupted: %d buffered documents were not written\n", s.Discarded)
	default:
		c.bad.Fprintf(c.diag, "\nRun failed: %v\n", s.Err)
	}

	fmt.Fprintf(c.diag, "Total files processed: %d of %d\n", s.Stats.Processed, s.Stats.Discovered)
	fmt.Fprintf(c.diag, "Successful: %d\n", s.Stats.Succeeded)
	fmt.Fprintf(c.diag, "Failed: %d\n", s.Stats.Failed)
	fmt.Fprintf(c.diag, "Skipped: %d\n", s.Stats.Skipped)
	fmt.Fprintf(c.diag, "Total time: %.1f minutes\n", s.Elapsed.Minutes())
	fmt.Fprintf(c.diag, "Final rate: %.1f files/minute\n", s.FilesPerMinute())
	if s.Documents >= 0 {
		fmt.Fprintf(c.diag, "Documents in DB: %d\n", s.Documents)
	}
}
