package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
)

func TestHuffmanContainerHeader(t *testing.T) {
	data := []byte("abracadabra")
	in := writeTemp(t, "in", data)
	dir := t.TempDir()
	packed := filepath.Join(dir, "packed")

	if err := CompressHuffman(in, packed); err != nil {
		t.Fatalf("compress: %v", err)
	}
	container := readAll(t, packed)

	if got := binary.LittleEndian.Uint64(container[:8]); got != 11 {
		t.Fatalf("original_size = %d, want 11", got)
	}
	symbolCount := binary.LittleEndian.Uint16(container[8:10])
	if symbolCount != 5 {
		t.Fatalf("symbol_count = %d, want 5", symbolCount)
	}
	if len(container) <= 10+int(symbolCount)*9 {
		t.Fatalf("container has no payload: %d bytes", len(container))
	}

	// Symbol records are ascending by byte value.
	wantFreqs := map[byte]uint64{'a': 5, 'b': 2, 'c': 1, 'd': 1, 'r': 2}
	var prev int = -1
	for i := 0; i < int(symbolCount); i++ {
		rec := container[10+i*9 : 10+i*9+9]
		v := rec[0]
		if int(v) <= prev {
			t.Fatalf("symbol table not ascending at record %d", i)
		}
		prev = int(v)
		if got := binary.LittleEndian.Uint64(rec[1:]); got != wantFreqs[v] {
			t.Fatalf("frequency of %q = %d, want %d", v, got, wantFreqs[v])
		}
	}

	unpacked := filepath.Join(dir, "unpacked")
	if err := DecompressHuffman(packed, unpacked); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if got := readAll(t, unpacked); !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

// Two symbols force one-bit codes, making the payload size exact.
func TestHuffmanTwoSymbolPayload(t *testing.T) {
	in := writeTemp(t, "in", []byte("aab"))
	packed := filepath.Join(t.TempDir(), "packed")
	if err := CompressHuffman(in, packed); err != nil {
		t.Fatalf("compress: %v", err)
	}
	// 10-byte preamble, two 9-byte records, 3 bits padded to one byte.
	if got := len(readAll(t, packed)); got != 10+2*9+1 {
		t.Fatalf("container size = %d, want %d", got, 10+2*9+1)
	}
}

func TestHuffmanSingleSymbol(t *testing.T) {
	data := bytes.Repeat([]byte{'z'}, 1000)
	in := writeTemp(t, "in", data)
	dir := t.TempDir()
	packed := filepath.Join(dir, "packed")
	unpacked := filepath.Join(dir, "unpacked")

	if err := CompressHuffman(in, packed); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := DecompressHuffman(packed, unpacked); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if got := readAll(t, unpacked); !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: %d bytes", len(got))
	}
}

func TestHuffmanEmptyInput(t *testing.T) {
	in := writeTemp(t, "in", nil)
	dir := t.TempDir()
	packed := filepath.Join(dir, "packed")
	unpacked := filepath.Join(dir, "unpacked")

	if err := CompressHuffman(in, packed); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if got := readAll(t, packed); len(got) != 10 {
		t.Fatalf("empty-input container = %d bytes, want bare 10-byte preamble", len(got))
	}
	if err := DecompressHuffman(packed, unpacked); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if got := readAll(t, unpacked); len(got) != 0 {
		t.Fatalf("expected empty output, got %d bytes", len(got))
	}
}

func TestHuffmanRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, size := range []int{1, 2, 255, 4096, 65537} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(rng.Intn(256))
		}
		in := writeTemp(t, "in", data)
		dir := t.TempDir()
		packed := filepath.Join(dir, "packed")
		unpacked := filepath.Join(dir, "unpacked")

		if err := CompressHuffman(in, packed); err != nil {
			t.Fatalf("size %d compress: %v", size, err)
		}
		if err := DecompressHuffman(packed, unpacked); err != nil {
			t.Fatalf("size %d decompress: %v", size, err)
		}
		if got := readAll(t, unpacked); !bytes.Equal(got, data) {
			t.Fatalf("size %d: round trip mismatch", size)
		}
	}
}

func TestHuffmanRejectsTruncatedPreamble(t *testing.T) {
	in := writeTemp(t, "in", []byte{1, 2, 3})
	out := filepath.Join(t.TempDir(), "out")
	if err := DecompressHuffman(in, out); !errors.Is(err, ErrBadContainer) {
		t.Fatalf("expected ErrBadContainer, got %v", err)
	}
}

func TestHuffmanRejectsShortPayload(t *testing.T) {
	// original_size claims 100 bytes but the payload carries far fewer.
	var container []byte
	container = binary.LittleEndian.AppendUint64(container, 100)
	container = binary.LittleEndian.AppendUint16(container, 2)
	container = append(container, 'a')
	container = binary.LittleEndian.AppendUint64(container, 50)
	container = append(container, 'b')
	container = binary.LittleEndian.AppendUint64(container, 50)
	container = append(container, 0x00) // 8 bits, not 100 symbols
	in := writeTemp(t, "in", container)
	out := filepath.Join(t.TempDir(), "out")
	if err := DecompressHuffman(in, out); !errors.Is(err, ErrBadContainer) {
		t.Fatalf("expected ErrBadContainer, got %v", err)
	}
}
