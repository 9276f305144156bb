// Package report collects per-file results under a mutex and renders the
// final run table.
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"crunch/internal/models"
)

// Collector is the thread-safe accumulator workers publish into. It is
// passed explicitly to the executor; there is no package-level state.
type Collector struct {
	mu      sync.Mutex
	results []models.Result
}

// Add appends one result under the mutex.
func (c *Collector) Add(r models.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Results returns a copy of the accumulated records.
func (c *Collector) Results() []models.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Result, len(c.results))
	copy(out, c.results)
	return out
}

// Failed counts non-OK records.
func (c *Collector) Failed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// BytesWritten totals the final sizes of successful records.
func (c *Collector) BytesWritten() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, r := range c.results {
		if r.OK() {
			total += r.FinalSize
		}
	}
	return total
}

// Render writes the per-file table to w.
func Render(w io.Writer, results []models.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Original", "Final", "Ratio", "Time", "Status"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range results {
		status := string(r.Status)
		if r.Err != nil {
			status = fmt.Sprintf("%s: %v", r.Status, r.Err)
		}
		table.Append([]string{
			r.Filename,
			FormatBytes(r.OriginalSize),
			FormatBytes(r.FinalSize),
			fmt.Sprintf("%.1f%%", r.Ratio()),
			FormatDuration(r.Elapsed),
			status,
		})
	}
	table.Render()
}

// FormatBytes returns a human-readable byte string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration rounds a duration for table display.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
