// Package journal writes the durable per-run audit log: a header
// identifying the run, per-file blocks appended atomically so concurrent
// workers never interleave lines, and a final summary.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"crunch/internal/fileio"
	"crunch/internal/report"
)

const (
	rule    = "========================================"
	fileSep = "----------------------------------------"

	nameTimeFormat  = "20060102_150405"
	stampTimeFormat = "2006-01-02 15:04:05"
	lineTimeFormat  = "15:04:05"

	maxTargetRunes = 50
)

// Journal is a run-scoped log file. Every mutating method takes the
// internal mutex so blocks written by concurrent workers stay contiguous.
type Journal struct {
	mu      sync.Mutex
	f       *os.File
	path    string
	runID   string
	started time.Time
}

// SanitizeTarget reduces a target path to a filename-safe token: basename
// only, problem characters replaced by underscores, at most 50 runes.
func SanitizeTarget(target string) string {
	safe := filepath.Base(filepath.Clean(target))
	safe = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, safe)
	runes := []rune(safe)
	if len(runes) > maxTargetRunes {
		runes = runes[:maxTargetRunes]
	}
	return string(runes)
}

// New creates journal_<op>_<target>_<timestamp>.log under dir, creating
// dir if needed.
func New(dir, operation, target string) (*Journal, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := fileio.EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("journal_%s_%s_%s.log",
		operation, SanitizeTarget(target), time.Now().Format(nameTimeFormat))
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create journal %s: %w", path, err)
	}
	return &Journal{
		f:       f,
		path:    path,
		runID:   uuid.NewString(),
		started: time.Now(),
	}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// RunID returns the identifier stamped into the header.
func (j *Journal) RunID() string { return j.runID }

// WriteHeader writes the fixed preamble identifying the run.
func (j *Journal) WriteHeader(operation, target, sourcePath, destPath string, totalFiles int, totalSize int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var b strings.Builder
	b.WriteString(rule + "\n")
	if totalFiles > 1 {
		b.WriteString("OPERATION JOURNAL - FOLDER\n")
	} else {
		b.WriteString("OPERATION JOURNAL - FILE\n")
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Operation: %s\n", operation)
	if totalFiles > 1 {
		fmt.Fprintf(&b, "Folder: %s\n", target)
		if sourcePath != "" {
			fmt.Fprintf(&b, "Path: %s\n", sourcePath)
		}
		fmt.Fprintf(&b, "Total files: %d\n", totalFiles)
		if totalSize > 0 {
			fmt.Fprintf(&b, "Total size: %s\n", report.FormatBytes(totalSize))
		}
	} else {
		fmt.Fprintf(&b, "File: %s\n", target)
		if sourcePath != "" {
			fmt.Fprintf(&b, "Source: %s\n", sourcePath)
		}
		if destPath != "" {
			fmt.Fprintf(&b, "Destination: %s\n", destPath)
		}
		if totalSize > 0 {
			fmt.Fprintf(&b, "Size: %s\n", report.FormatBytes(totalSize))
		}
	}
	fmt.Fprintf(&b, "Run ID: %s\n", j.runID)
	fmt.Fprintf(&b, "Started: %s\n", time.Now().Format(stampTimeFormat))
	b.WriteString(rule + "\n\n")
	j.write(b.String())
}

// Log writes one timestamped line.
func (j *Journal) Log(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.write(fmt.Sprintf("[%s] %s\n", time.Now().Format(lineTimeFormat), message))
}

// FileBlock writes one file's complete journal block — separator,
// buffered per-file lines, completion marker — in a single critical
// section, so blocks from concurrent workers never interleave.
func (j *Journal) FileBlock(fileNum, totalFiles int, filename, body, status string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nFile %d/%d: %s\n%s\n", fileSep, fileNum, totalFiles, filename, fileSep)
	b.WriteString(body)
	fmt.Fprintf(&b, "File %d/%d completed: %s\n", fileNum, totalFiles, status)
	j.write(b.String())
}

// LogBlock appends a pre-formatted multi-line block in one critical
// section; workers use it to flush their per-file buffer.
func (j *Journal) LogBlock(block string) {
	if block == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.write(block)
}

// WriteSummary writes the terminal block, including total wall-clock time
// since the journal was opened.
func (j *Journal) WriteSummary(status string, filesProcessed int, bytesProcessed int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "[%s] Run completed: %s\n", time.Now().Format(stampTimeFormat), status)
	if filesProcessed > 1 {
		fmt.Fprintf(&b, "Total processed: %d files", filesProcessed)
		if bytesProcessed > 0 {
			fmt.Fprintf(&b, " (%s)", report.FormatBytes(bytesProcessed))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total time: %d ms\n", time.Since(j.started).Milliseconds())
	b.WriteString(rule + "\n")
	j.write(b.String())
}

// Close releases the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

func (j *Journal) write(s string) {
	// Errors here must not abort the run; the journal is best-effort once
	// it has been created.
	_, _ = j.f.WriteString(s)
	_ = j.f.Sync()
}
