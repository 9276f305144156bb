package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func readAll(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func TestCompressRLEKnownBytes(t *testing.T) {
	in := writeTemp(t, "in", []byte("aaabbc"))
	out := filepath.Join(t.TempDir(), "out")

	if err := CompressRLE(in, out); err != nil {
		t.Fatalf("compress: %v", err)
	}

	want := []byte{
		0x03, 0x00, 0x00, 0x00, 'a',
		0x02, 0x00, 0x00, 0x00, 'b',
		0x01, 0x00, 0x00, 0x00, 'c',
	}
	if got := readAll(t, out); !bytes.Equal(got, want) {
		t.Fatalf("container mismatch:\ngot  %x\nwant %x", got, want)
	}
}

func TestRLERoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := [][]byte{
		nil,
		[]byte{0},
		bytes.Repeat([]byte{0xff}, 100000),
		[]byte("abcdef"),
	}
	random := make([]byte, 4096)
	for i := range random {
		random[i] = byte(rng.Intn(4)) // short runs
	}
	cases = append(cases, random)

	for i, data := range cases {
		in := writeTemp(t, "in", data)
		dir := t.TempDir()
		packed := filepath.Join(dir, "packed")
		unpacked := filepath.Join(dir, "unpacked")

		if err := CompressRLE(in, packed); err != nil {
			t.Fatalf("case %d compress: %v", i, err)
		}
		if err := DecompressRLE(packed, unpacked); err != nil {
			t.Fatalf("case %d decompress: %v", i, err)
		}
		if got := readAll(t, unpacked); !bytes.Equal(got, data) {
			t.Fatalf("case %d: round trip mismatch (%d vs %d bytes)", i, len(got), len(data))
		}
	}
}

func TestRLEOutputSizeIsPairMultiple(t *testing.T) {
	in := writeTemp(t, "in", []byte("xxyyzzxxyy"))
	out := filepath.Join(t.TempDir(), "out")
	if err := CompressRLE(in, out); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if size := int64(len(readAll(t, out))); size%5 != 0 {
		t.Fatalf("container size %d is not a multiple of 5", size)
	}
}

func TestRLEEmptyInputEmptyOutput(t *testing.T) {
	in := writeTemp(t, "in", nil)
	out := filepath.Join(t.TempDir(), "out")
	if err := CompressRLE(in, out); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if data := readAll(t, out); len(data) != 0 {
		t.Fatalf("expected empty output, got %d bytes", len(data))
	}
}

func TestDecompressRLERejectsBadCount(t *testing.T) {
	var container []byte
	container = binary.LittleEndian.AppendUint32(container, 0)
	container = append(container, 'a')
	in := writeTemp(t, "in", container)
	out := filepath.Join(t.TempDir(), "out")

	err := DecompressRLE(in, out)
	if !errors.Is(err, ErrBadContainer) {
		t.Fatalf("expected ErrBadContainer, got %v", err)
	}
}

func TestDecompressRLERejectsTruncatedPair(t *testing.T) {
	in := writeTemp(t, "in", []byte{0x03, 0x00, 0x00})
	out := filepath.Join(t.TempDir(), "out")
	if err := DecompressRLE(in, out); !errors.Is(err, ErrBadContainer) {
		t.Fatalf("expected ErrBadContainer, got %v", err)
	}
}
