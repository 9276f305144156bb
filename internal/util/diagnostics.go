// Package util carries the runtime diagnostics behind --diagnose.
package util

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"crunch/internal/report"
)

// ProcessInfo holds a snapshot of the running process.
type ProcessInfo struct {
	PID         int
	Goroutines  int
	HeapInUse   string
	HeapSys     string
	NumGC       uint32
	CPUCores    int
	GoVersion   string
	ElapsedTime time.Duration
}

// GetProcessInfo samples the runtime.
func GetProcessInfo(startTime time.Time) ProcessInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return ProcessInfo{
		PID:         os.Getpid(),
		Goroutines:  runtime.NumGoroutine(),
		HeapInUse:   report.FormatBytes(int64(m.HeapInuse)),
		HeapSys:     report.FormatBytes(int64(m.HeapSys)),
		NumGC:       m.NumGC,
		CPUCores:    runtime.NumCPU(),
		GoVersion:   runtime.Version(),
		ElapsedTime: time.Since(startTime),
	}
}

// StartDiagnosticMonitor logs a runtime snapshot every interval until the
// returned channel is closed.
func StartDiagnosticMonitor(startTime time.Time, interval time.Duration) chan struct{} {
	stopChan := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopChan:
				return
			case <-ticker.C:
				info := GetProcessInfo(startTime)
				log.Debug().
					Int("goroutines", info.Goroutines).
					Str("heap", info.HeapInUse).
					Str("heap_sys", info.HeapSys).
					Uint32("gc_cycles", info.NumGC).
					Msg("diagnostics")
			}
		}
	}()
	return stopChan
}

// LogFullDiagnostics logs a detailed snapshot once.
func LogFullDiagnostics(startTime time.Time) {
	info := GetProcessInfo(startTime)
	log.Info().
		Int("pid", info.PID).
		Str("go", info.GoVersion).
		Int("cpus", info.CPUCores).
		Int("goroutines", info.Goroutines).
		Str("heap", info.HeapInUse).
		Str("heap_sys", info.HeapSys).
		Uint32("gc_cycles", info.NumGC).
		Dur("uptime", info.ElapsedTime.Round(time.Second)).
		Msg("diagnostic report")
}
