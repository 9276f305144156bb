package codec

import (
	"encoding/binary"
	"fmt"

	"crunch/internal/fileio"
)

// LZW container: a dense sequence of uint16 codes, little-endian. The
// dictionary starts with the 256 single-byte strings; new entries are
// assigned codes 256..65535 and the dictionary freezes once code 0xFFFF is
// taken. Code width is a fixed 16 bits.

const (
	lzwMaxCode = 0xFFFF
	lzwBufSize = 64 * 1024
)

// CompressLZW encodes inputPath into outputPath.
func CompressLZW(inputPath, outputPath string) error {
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

	dict := make(map[string]uint16, 4096)
	for i := 0; i < 256; i++ {
		dict[string([]byte{byte(i)})] = uint16(i)
	}
	nextCode := uint32(256)

	var (
		w       []byte
		codeBuf [2]byte
		outBuf  = make([]byte, 0, lzwBufSize)
	)
	emit := func(code uint16) error {
		binary.LittleEndian.PutUint16(codeBuf[:], code)
		outBuf = append(outBuf, codeBuf[0], codeBuf[1])
		if len(outBuf) >= lzwBufSize {
			if err := out.WriteAll(outBuf); err != nil {
				return err
			}
			outBuf = outBuf[:0]
		}
		return nil
	}

	buf := make([]byte, lzwBufSize)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		for _, c := range buf[:n] {
			wc := string(append(w, c))
			if _, ok := dict[wc]; ok {
				w = append(w, c)
				continue
			}
			if err := emit(dict[string(w)]); err != nil {
				return err
			}
			if nextCode <= lzwMaxCode {
				dict[wc] = uint16(nextCode)
				nextCode++
			}
			w = append(w[:0], c)
		}
	}
	if len(w) > 0 {
		if err := emit(dict[string(w)]); err != nil {
			return err
		}
	}
	if len(outBuf) > 0 {
		if err := out.WriteAll(outBuf); err != nil {
			return err
		}
	}
	return nil
}

// DecompressLZW decodes an LZW container from inputPath into outputPath.
// A code at or beyond the next free code (other than the classic
// code==next case) is a format error; output produced so far is kept.
func DecompressLZW(inputPath, outputPath string) error {
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

	dict := make([][]byte, 256, 4096)
	for i := 0; i < 256; i++ {
		dict[i] = []byte{byte(i)}
	}

	var (
		w       []byte
		codeBuf [2]byte
		outBuf  = make([]byte, 0, lzwBufSize)
	)
	flush := func() error {
		if len(outBuf) == 0 {
			return nil
		}
		if err := out.WriteAll(outBuf); err != nil {
			return err
		}
		outBuf = outBuf[:0]
		return nil
	}

	for {
		n, err := in.ReadFull(codeBuf[:])
		if err != nil {
			return err
		}
		if n == 0 {
			return flush()
		}
		if n < 2 {
			flush()
			return fmt.Errorf("lzw: odd trailing byte: %w", ErrBadContainer)
		}
		code := binary.LittleEndian.Uint16(codeBuf[:])

		var entry []byte
		switch {
		case int(code) < len(dict):
			entry = dict[code]
		case int(code) == len(dict) && len(w) > 0:
			// The encoder referenced the entry it is in the middle of
			// defining; it must be w plus w's first byte.
			entry = append(append([]byte{}, w...), w[0])
		default:
			flush()
			return fmt.Errorf("lzw: code %d beyond dictionary of %d: %w", code, len(dict), ErrBadCode)
		}

		outBuf = append(outBuf, entry...)
		if len(outBuf) >= lzwBufSize {
			if err := flush(); err != nil {
				return err
			}
		}

		if len(w) > 0 && len(dict) <= lzwMaxCode {
			dict = append(dict, append(append([]byte{}, w...), entry[0]))
		}
		w = entry
	}
}
