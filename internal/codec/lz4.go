package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
)

// LZ4 is the one compressor whose container is not hand-rolled: the
// standard lz4 frame format, as written by lz4.Writer.

// CompressLZ4 writes inputPath as an lz4 frame at outputPath.
func CompressLZ4(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()

	zw := lz4.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return fmt.Errorf("lz4 compress %s: %w", inputPath, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("lz4 finish %s: %w", outputPath, err)
	}
	return nil
}

// DecompressLZ4 expands an lz4 frame from inputPath into outputPath.
func DecompressLZ4(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()

	zr := lz4.NewReader(in)
	if _, err := io.Copy(out, zr); err != nil {
		return fmt.Errorf("lz4 decompress %s: %w", inputPath, err)
	}
	return nil
}
