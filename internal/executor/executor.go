// Package executor drives one run: it fans the work list out over the
// worker pool, runs one pipeline per file, and publishes every result to
// the shared collector, the console, and the journal under their own
// locks.
package executor

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"crunch/internal/journal"
	"crunch/internal/models"
	"crunch/internal/pipeline"
	"crunch/internal/pool"
	"crunch/internal/report"
)

// Options configures a run. Journal may be nil (no audit log); Console may
// be nil (silent).
type Options struct {
	Workers      int
	Template     pipeline.Request // Ops, Compression, Encryption, Key
	Journal      *journal.Journal
	Collector    *report.Collector
	Console      io.Writer
	ShowProgress bool
}

// Executor runs work items to quiescence. No cancellation: a failed file
// records its failure and its siblings continue.
type Executor struct {
	opts      Options
	consoleMu sync.Mutex
	bar       *progressbar.ProgressBar
	fileSeq   atomic.Int64
}

// New builds an executor; the collector must not be nil.
func New(opts Options) *Executor {
	return &Executor{opts: opts}
}

// Run processes every item and returns the aggregated stats. All codec
// work happens outside any critical section; records are built in
// worker-local memory and published with exactly one lock each.
func (e *Executor) Run(items []models.WorkItem) models.Stats {
	stats := models.Stats{
		Discovered: len(items),
		StartTime:  time.Now(),
	}
	for _, it := range items {
		stats.TotalFileSize += it.Size
	}

	if e.opts.ShowProgress && e.opts.Console != nil {
		e.bar = progressbar.NewOptions(len(items),
			progressbar.OptionSetWriter(e.opts.Console),
			progressbar.OptionSetDescription("Processing"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	p := pool.New(e.opts.Workers)
	total := len(items)
	for _, item := range items {
		item := item
		p.Submit(func() {
			e.processItem(item, total)
		})
	}
	p.Wait()
	p.Stop()

	stats.EndTime = time.Now()
	results := e.opts.Collector.Results()
	stats.Processed = len(results)
	for _, r := range results {
		if r.OK() {
			stats.Successful++
			stats.BytesWritten += r.FinalSize
		} else {
			stats.Failed++
		}
	}
	return stats
}

// processItem owns one work item end-to-end on a single worker.
func (e *Executor) processItem(item models.WorkItem, total int) {
	req := e.opts.Template
	req.Item = item

	result, block := pipeline.Run(req)
	seq := int(e.fileSeq.Add(1))

	// Publish: one lock per sink, never two at once.
	e.opts.Collector.Add(result)

	if e.opts.Journal != nil {
		e.opts.Journal.FileBlock(seq, total, item.Source, block, string(result.Status))
	}

	if e.opts.Console != nil {
		e.consoleMu.Lock()
		if e.bar != nil {
			_ = e.bar.Add(1)
			if !result.OK() {
				fmt.Fprintf(e.opts.Console, "\n%s: %s (%v)\n", item.Source, result.Status, result.Err)
			}
		} else {
			if result.OK() {
				fmt.Fprintf(e.opts.Console, "%s -> %s (%s -> %s, %.1f%%, %s)\n",
					item.Source, item.Destination,
					report.FormatBytes(result.OriginalSize), report.FormatBytes(result.FinalSize),
					result.Ratio(), report.FormatDuration(result.Elapsed))
			} else {
				fmt.Fprintf(e.opts.Console, "%s: %s (%v)\n", item.Source, result.Status, result.Err)
			}
		}
		e.consoleMu.Unlock()
	}

	if !result.OK() {
		log.Debug().Str("file", item.Source).Err(result.Err).Msg("work item failed")
	}
}
