// Package pipeline executes one operation chain against one input file,
// staging intermediate results through temporary files that are always
// removed, and emits a single aggregated result record plus a pre-formatted
// log block for the journal.
package pipeline

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crunch/internal/codec"
	"crunch/internal/fileio"
	"crunch/internal/models"
)

// Op is one operation code of a chain.
type Op byte

const (
	OpCompress   Op = 'c'
	OpDecompress Op = 'd'
	OpEncrypt    Op = 'e'
	OpDecrypt    Op = 'u'
)

// ParseChain decomposes an operation string into ops, rejecting empty
// chains and unknown codes. Dashes are ignored.
func ParseChain(s string) ([]Op, error) {
	var ops []Op
	for _, r := range s {
		switch r {
		case '-':
		case 'c', 'd', 'e', 'u':
			ops = append(ops, Op(r))
		default:
			return nil, fmt.Errorf("unknown operation %q", r)
		}
	}
	if len(ops) == 0 {
		return nil, errors.New("operation chain is empty")
	}
	return ops, nil
}

// HasCipher reports whether any op of the chain needs a key.
func HasCipher(ops []Op) bool {
	for _, op := range ops {
		if op == OpEncrypt || op == OpDecrypt {
			return true
		}
	}
	return false
}

func (o Op) String() string {
	switch o {
	case OpCompress:
		return "compress"
	case OpDecompress:
		return "decompress"
	case OpEncrypt:
		return "encrypt"
	case OpDecrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("op(%c)", byte(o))
	}
}

// Request carries everything one pipeline run needs.
type Request struct {
	Item        models.WorkItem
	Ops         []Op
	Compression codec.CompressionAlg
	Encryption  codec.EncryptionAlg
	Key         string
}

// Run executes the chain. It returns the result record and the buffered
// per-file log block; the caller flushes the block atomically so concurrent
// pipelines never interleave lines.
func Run(req Request) (models.Result, string) {
	var (
		logBuf  strings.Builder
		temps   []string
		current = req.Item.Source
	)
	result := models.Result{
		Filename: req.Item.Source,
		Status:   models.StatusOK,
	}
	logf := func(format string, args ...any) {
		fmt.Fprintf(&logBuf, "[%s] ", time.Now().Format("15:04:05"))
		fmt.Fprintf(&logBuf, format, args...)
		logBuf.WriteByte('\n')
	}
	defer func() {
		for _, t := range temps {
			_ = os.Remove(t)
		}
	}()

	if size, err := fileio.FileSize(req.Item.Source); err == nil {
		result.OriginalSize = size
	}
	logf("start %s (%d bytes)", req.Item.Source, result.OriginalSize)

	srcHash := pathHash(req.Item.Source)
	for i, op := range req.Ops {
		last := i == len(req.Ops)-1
		stageOut := req.Item.Destination
		if !last {
			stageOut = fmt.Sprintf("%s.tmp.%d.%s", req.Item.Destination, i, srcHash)
			// Tracked before the stage runs so a partial temp left by a
			// failing stage is removed too.
			temps = append(temps, stageOut)
		}

		stageStart := time.Now()
		err := runStage(op, current, stageOut, req)
		stageElapsed := time.Since(stageStart)
		result.Elapsed += stageElapsed

		if err != nil {
			result.Status = classify(err)
			result.Err = err
			logf("stage %d (%s) failed after %s: %v", i+1, op, stageElapsed.Round(time.Millisecond), err)
			return result, logBuf.String()
		}
		logf("stage %d/%d %s: %s -> %s (%s)", i+1, len(req.Ops), op,
			filepath.Base(current), filepath.Base(stageOut), stageElapsed.Round(time.Millisecond))

		if !last {
			current = stageOut
		}
	}

	if size, err := fileio.FileSize(req.Item.Destination); err == nil {
		result.FinalSize = size
	} else {
		result.Status = models.StatusPartialOutput
		result.Err = err
	}
	logf("done %s: %d -> %d bytes (%.1f%%) in %s", req.Item.Destination,
		result.OriginalSize, result.FinalSize, result.Ratio(), result.Elapsed.Round(time.Millisecond))
	return result, logBuf.String()
}

func runStage(op Op, in, out string, req Request) error {
	switch op {
	case OpCompress:
		return codec.Compress(req.Compression, in, out)
	case OpDecompress:
		return codec.Decompress(req.Compression, in, out)
	case OpEncrypt:
		return codec.Encrypt(req.Encryption, in, out, req.Key)
	case OpDecrypt:
		return codec.Decrypt(req.Encryption, in, out, req.Key)
	default:
		return fmt.Errorf("unknown operation %q", byte(op))
	}
}

// pathHash keeps temp names distinct when several workers share an output
// directory.
func pathHash(path string) string {
	h := fnv.New32a()
	h.Write([]byte(path))
	return fmt.Sprintf("%08x", h.Sum32())
}

func classify(err error) models.Status {
	switch {
	case errors.Is(err, codec.ErrUnknownAlgorithm):
		return models.StatusBadAlgorithm
	case errors.Is(err, codec.ErrEmptyKey):
		return models.StatusKeyMissing
	case errors.Is(err, codec.ErrBadCode),
		errors.Is(err, codec.ErrBadContainer),
		errors.Is(err, codec.ErrBadPadding):
		return models.StatusFormatError
	default:
		return models.StatusIOError
	}
}
