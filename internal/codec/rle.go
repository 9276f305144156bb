package codec

import (
	"encoding/binary"
	"fmt"

	"crunch/internal/fileio"
)

// RLE container: a concatenation of (count int32 little-endian, value byte)
// pairs. A pair is emitted whenever the value changes or at EOF; count is
// at least 1. Counts are little-endian on every platform so containers stay
// portable across hosts.

const rleBufSize = 64 * 1024

// CompressRLE run-length encodes inputPath into outputPath.
func CompressRLE(inputPath, outputPath string) error {
	in, err := fileio.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fileio.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var (
		prev  byte
		count int32
		first = true
		pair  [5]byte
	)
	buf := make([]byte, rleBufSize)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		for _, c := range buf[:n] {
			if !first && c == prev {
				count++
				continue
			}
			if !first {
				binary.LittleEndian.PutUint32(pair[:4], uint32(count))
				pair[4] = prev
				if err := out.WriteAll(pair[:]); err != nil {
					return err
				}
			}
			prev = c
			count = 1
			first = false
		}
	}
	if !first {
		binary.LittleEndian.PutUint32(pair[:4], uint32(count))
		pair[4] = prev
		if err := out.WriteAll(pair[:]); err != nil {
			return err
		}
	}
	return nil
}

// DecompressRLE expands an RLE container from inputPath into outputPath.
// A non-positive count or a truncated pair is a format error; output
// produced before the error is kept.
func DecompressRLE(inputPath, outputPath string) error {
	in, err := fileio.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fileio.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var pair [5]byte
	run := make([]byte, rleBufSize)
	for {
		n, err := in.ReadFull(pair[:])
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if n < len(pair) {
			return fmt.Errorf("rle: truncated pair: %w", ErrBadContainer)
		}
		count := int32(binary.LittleEndian.Uint32(pair[:4]))
		if count <= 0 {
			return fmt.Errorf("rle: run length %d: %w", count, ErrBadContainer)
		}
		remaining := int(count)
		for remaining > 0 {
			chunk := remaining
			if chunk > len(run) {
				chunk = len(run)
			}
			for i := 0; i < chunk; i++ {
				run[i] = pair[4]
			}
			if err := out.WriteAll(run[:chunk]); err != nil {
				return err
			}
			remaining -= chunk
		}
	}
}
