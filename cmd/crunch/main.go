package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"crunch/internal/codec"
	"crunch/internal/config"
	"crunch/internal/executor"
	"crunch/internal/journal"
	"crunch/internal/keycheck"
	"crunch/internal/pipeline"
	"crunch/internal/pool"
	"crunch/internal/report"
	"crunch/internal/util"
	"crunch/internal/walker"
)

func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s\n", err, usage())
		return 1
	}

	cfgPath := args.ConfigPath
	if cfgPath == "" {
		if _, err := os.Stat("crunch.yml"); err == nil {
			cfgPath = "crunch.yml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Error().Err(err).Msg("bad config file")
		return 1
	}
	applyFlags(&cfg, args)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if args.Diagnose {
		stop := util.StartDiagnosticMonitor(startTime, 30*time.Second)
		defer close(stop)
		util.LogFullDiagnostics(startTime)
	}

	ops, err := pipeline.ParseChain(args.Chain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s\n", err, usage())
		return 1
	}

	// Selector parse failures are warned here and recorded per file by the
	// pipeline, matching the per-file error policy for unknown algorithms.
	var compAlg codec.CompressionAlg
	if args.CompName != "" {
		if compAlg, err = codec.ParseCompression(args.CompName); err != nil {
			log.Warn().Err(err).Msg("compression selector not recognized")
		}
	} else if hasCompression(ops) {
		fmt.Fprintln(os.Stderr, "Error: --comp-alg is required for compress/decompress operations")
		return 1
	}
	var encAlg codec.EncryptionAlg
	if args.EncName != "" {
		if encAlg, err = codec.ParseEncryption(args.EncName); err != nil {
			log.Warn().Err(err).Msg("encryption selector not recognized")
		}
	} else if pipeline.HasCipher(ops) {
		fmt.Fprintln(os.Stderr, "Error: --enc-alg is required for encrypt/decrypt operations")
		return 1
	}

	key := args.Key
	if pipeline.HasCipher(ops) {
		if key == "" {
			key, err = promptKey()
			if err != nil {
				log.Error().Err(err).Msg("no key available")
				return 1
			}
		}
		if err := checkKey(ops, encAlg, key); err != nil {
			log.Error().Err(err).Msg("key rejected by policy gate")
			return 1
		}
	}

	items, err := walker.Collect(args.Input, args.Output)
	if err != nil {
		log.Error().Err(err).Msg("input enumeration failed")
		return 1
	}
	if len(items) == 0 {
		log.Warn().Str("input", args.Input).Msg("nothing to process")
		return 0
	}

	var totalSize int64
	for _, it := range items {
		totalSize += it.Size
	}
	fmt.Printf("Processing %d file(s) (%s) with chain %q\n",
		len(items), report.FormatBytes(totalSize), chainString(ops))

	jnl, err := journal.New(cfg.JournalDir, chainString(ops), args.Input)
	if err != nil {
		log.Error().Err(err).Msg("cannot create journal")
		return 1
	}
	defer jnl.Close()
	jnl.WriteHeader(describeOps(ops, compAlg, encAlg), args.Input, args.Input, args.Output, len(items), totalSize)
	log.Debug().Str("journal", jnl.Path()).Str("run_id", jnl.RunID()).Msg("journal opened")

	workers := cfg.Workers
	if workers <= 0 {
		workers = pool.DefaultSize()
	}
	jnl.Log(fmt.Sprintf("dispatching %d file(s) to %d worker(s)", len(items), workers))

	collector := &report.Collector{}
	exec := executor.New(executor.Options{
		Workers: workers,
		Template: pipeline.Request{
			Ops:         ops,
			Compression: compAlg,
			Encryption:  encAlg,
			Key:         key,
		},
		Journal:      jnl,
		Collector:    collector,
		Console:      os.Stdout,
		ShowProgress: len(items) > 1,
	})
	stats := exec.Run(items)

	status := "OK"
	failed := collector.Failed()
	if failed > 0 {
		status = fmt.Sprintf("COMPLETED WITH %d ERROR(S)", failed)
	}
	jnl.WriteSummary(status, stats.Processed, collector.BytesWritten())

	fmt.Println()
	report.Render(os.Stdout, collector.Results())

	elapsed := stats.EndTime.Sub(stats.StartTime)
	var filesPerSec float64
	if elapsed.Seconds() > 0 {
		filesPerSec = float64(stats.Processed) / elapsed.Seconds()
	}
	fmt.Printf("\nProcessed %d file(s) in %s (%.2f files/sec)\n",
		stats.Processed, elapsed.Round(time.Millisecond), filesPerSec)
	fmt.Printf("Successful: %d  Failed: %d  Written: %s\n",
		stats.Successful, stats.Failed, report.FormatBytes(stats.BytesWritten))
	fmt.Printf("Journal: %s\n", jnl.Path())

	if args.Diagnose {
		util.LogFullDiagnostics(startTime)
	}

	if cfg.Strict && failed > 0 {
		return 1
	}
	return 0
}

func applyFlags(cfg *config.Config, args Args) {
	if args.WorkersSet {
		cfg.Workers = args.Workers
	}
	if args.JournalDir != "" {
		cfg.JournalDir = args.JournalDir
	}
	if args.Strict {
		cfg.Strict = true
	}
	if args.Verbose {
		cfg.Verbose = true
	}
}

func hasCompression(ops []pipeline.Op) bool {
	for _, op := range ops {
		if op == pipeline.OpCompress || op == pipeline.OpDecompress {
			return true
		}
	}
	return false
}

func hasEncrypt(ops []pipeline.Op) bool {
	for _, op := range ops {
		if op == pipeline.OpEncrypt {
			return true
		}
	}
	return false
}

// checkKey applies the strength gate. Decrypt-only chains just need a
// non-empty key; encrypting chains must pass the per-cipher heuristic.
func checkKey(ops []pipeline.Op, alg codec.EncryptionAlg, key string) error {
	if key == "" {
		return keycheck.ErrEmptyKey
	}
	if !hasEncrypt(ops) {
		return nil
	}
	switch alg {
	case codec.AES128:
		return keycheck.CheckAES(key)
	case codec.Vigenere:
		return keycheck.CheckVigenere(key)
	default:
		return nil
	}
}

// promptKey reads the key from the controlling terminal without echo.
func promptKey() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("key required: pass -k or run on a terminal")
	}
	fmt.Fprint(os.Stderr, "Key: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty key")
	}
	return string(raw), nil
}

func chainString(ops []pipeline.Op) string {
	var b strings.Builder
	for _, op := range ops {
		b.WriteByte(byte(op))
	}
	return b.String()
}

func describeOps(ops []pipeline.Op, comp codec.CompressionAlg, enc codec.EncryptionAlg) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op {
		case pipeline.OpCompress, pipeline.OpDecompress:
			parts = append(parts, fmt.Sprintf("%s(%s)", op, comp))
		default:
			parts = append(parts, fmt.Sprintf("%s(%s)", op, enc))
		}
	}
	return strings.Join(parts, " -> ")
}
