package codec

import (
	"container/heap"
	"encoding/binary"
	"fmt"

	"crunch/internal/fileio"
)

// Huffman container layout, in order:
//
//	original_size  uint64 LE   byte count of the original input
//	symbol_count   uint16 LE   number of distinct byte values
//	symbol table   symbol_count × (value byte, frequency uint64 LE),
//	               ascending by value
//	payload        bit-packed codes, MSB-first, zero-padded in the last byte
//
// The tree is rebuilt from the transmitted frequency table on both sides,
// so encoder and decoder always agree on code assignment. A single
// distinct symbol gets the one-bit code "0".

const huffBufSize = 64 * 1024

type huffNode struct {
	freq        uint64
	value       byte
	left, right *huffNode
}

func (n *huffNode) leaf() bool { return n.left == nil && n.right == nil }

type huffHeap []*huffNode

func (h huffHeap) Len() int           { return len(h) }
func (h huffHeap) Less(i, j int) bool { return h[i].freq < h[j].freq }
func (h huffHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x any)        { *h = append(*h, x.(*huffNode)) }
func (h *huffHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// buildHuffTree merges leaves by ascending frequency. Ties resolve by heap
// order; both directions rebuild from the same table so the shape always
// matches.
func buildHuffTree(freqs *[256]uint64) *huffNode {
	h := huffHeap{}
	for v := 0; v < 256; v++ {
		if freqs[v] > 0 {
			h = append(h, &huffNode{freq: freqs[v], value: byte(v)})
		}
	}
	if len(h) == 0 {
		return nil
	}
	heap.Init(&h)
	for h.Len() > 1 {
		a := heap.Pop(&h).(*huffNode)
		b := heap.Pop(&h).(*huffNode)
		heap.Push(&h, &huffNode{freq: a.freq + b.freq, left: a, right: b})
	}
	return heap.Pop(&h).(*huffNode)
}

// assignCodes walks the tree, left = 0, right = 1. A lone leaf gets "0".
func assignCodes(root *huffNode, codes *[256][]byte) {
	if root == nil {
		return
	}
	if root.leaf() {
		codes[root.value] = []byte{0}
		return
	}
	var walk func(n *huffNode, prefix []byte)
	walk = func(n *huffNode, prefix []byte) {
		if n.leaf() {
			codes[n.value] = append([]byte{}, prefix...)
			return
		}
		walk(n.left, append(prefix, 0))
		walk(n.right, append(prefix, 1))
	}
	walk(root, nil)
}

// countFrequencies is the first encoder pass: byte histogram plus total.
func countFrequencies(inputPath string) (freqs [256]uint64, total uint64, err error) {
	in, err := fileio.Open(inputPath)
	if err != nil {
		return freqs, 0, err
	}
	defer in.Close()

	buf := make([]byte, huffBufSize)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return freqs, total, err
		}
		if n == 0 {
			return freqs, total, nil
		}
		for _, c := range buf[:n] {
			freqs[c]++
		}
		total += uint64(n)
	}
}

// CompressHuffman encodes inputPath into outputPath using a static
// frequency table transmitted in the container header.
func CompressHuffman(inputPath, outputPath string) error {
	freqs, total, err := countFrequencies(inputPath)
	if err != nil {
		return err
	}

	out, err := fileio.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var symbolCount uint16
	for v := 0; v < 256; v++ {
		if freqs[v] > 0 {
			symbolCount++
		}
	}

	header := make([]byte, 0, 10+int(symbolCount)*9)
	header = binary.LittleEndian.AppendUint64(header, total)
	header = binary.LittleEndian.AppendUint16(header, symbolCount)
	for v := 0; v < 256; v++ {
		if freqs[v] > 0 {
			header = append(header, byte(v))
			header = binary.LittleEndian.AppendUint64(header, freqs[v])
		}
	}
	if err := out.WriteAll(header); err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	var codes [256][]byte
	assignCodes(buildHuffTree(&freqs), &codes)

	// Second pass over the input, emitting bit-packed codes.
	in, err := fileio.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	buf := make([]byte, huffBufSize)
	bw := bitWriter{out: out}
	for {
		n, err := in.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		for _, c := range buf[:n] {
			if err := bw.writeBits(codes[c]); err != nil {
				return err
			}
		}
	}
	return bw.flush()
}

// bitWriter packs bits MSB-first into bytes and buffers writes.
type bitWriter struct {
	out  *fileio.Handle
	cur  byte
	nbit int
	buf  []byte
}

func (w *bitWriter) writeBits(bits []byte) error {
	for _, b := range bits {
		w.cur <<= 1
		w.cur |= b & 1
		w.nbit++
		if w.nbit == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.nbit = 0, 0
			if len(w.buf) >= huffBufSize {
				if err := w.out.WriteAll(w.buf); err != nil {
					return err
				}
				w.buf = w.buf[:0]
			}
		}
	}
	return nil
}

// flush zero-pads the final partial byte and drains the buffer.
func (w *bitWriter) flush() error {
	if w.nbit > 0 {
		w.cur <<= uint(8 - w.nbit)
		w.buf = append(w.buf, w.cur)
		w.cur, w.nbit = 0, 0
	}
	if len(w.buf) > 0 {
		if err := w.out.WriteAll(w.buf); err != nil {
			return err
		}
		w.buf = w.buf[:0]
	}
	return nil
}

// DecompressHuffman decodes a Huffman container from inputPath into
// outputPath, stopping after original_size symbols regardless of trailing
// padding bits.
func DecompressHuffman(inputPath, outputPath string) error {
	in, err := fileio.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var preamble [10]byte
	n, err := in.ReadFull(preamble[:])
	if err != nil {
		return err
	}
	if n < len(preamble) {
		return fmt.Errorf("huffman: truncated preamble: %w", ErrBadContainer)
	}
	total := binary.LittleEndian.Uint64(preamble[:8])
	symbolCount := binary.LittleEndian.Uint16(preamble[8:10])

	var freqs [256]uint64
	table := make([]byte, int(symbolCount)*9)
	n, err = in.ReadFull(table)
	if err != nil {
		return err
	}
	if n < len(table) {
		return fmt.Errorf("huffman: truncated symbol table: %w", ErrBadContainer)
	}
	for i := 0; i < int(symbolCount); i++ {
		rec := table[i*9 : i*9+9]
		freqs[rec[0]] = binary.LittleEndian.Uint64(rec[1:])
	}

	out, err := fileio.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if total == 0 || symbolCount == 0 {
		return nil
	}

	root := buildHuffTree(&freqs)
	if root == nil {
		return fmt.Errorf("huffman: symbol table carries no frequencies: %w", ErrBadContainer)
	}

	// Single-leaf tree: the payload is total copies of the one symbol.
	if root.leaf() {
		run := make([]byte, huffBufSize)
		for i := range run {
			run[i] = root.value
		}
		remaining := total
		for remaining > 0 {
			chunk := uint64(len(run))
			if chunk > remaining {
				chunk = remaining
			}
			if err := out.WriteAll(run[:chunk]); err != nil {
				return err
			}
			remaining -= chunk
		}
		return nil
	}

	var (
		node    = root
		emitted uint64
		outBuf  = make([]byte, 0, huffBufSize)
	)
	buf := make([]byte, huffBufSize)
	for emitted < total {
		n, err := in.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("huffman: payload ended after %d of %d symbols: %w", emitted, total, ErrBadContainer)
		}
		for _, b := range buf[:n] {
			for bit := 7; bit >= 0 && emitted < total; bit-- {
				if (b>>uint(bit))&1 == 0 {
					node = node.left
				} else {
					node = node.right
				}
				if node.leaf() {
					outBuf = append(outBuf, node.value)
					emitted++
					node = root
					if len(outBuf) >= huffBufSize {
						if err := out.WriteAll(outBuf); err != nil {
							return err
						}
						outBuf = outBuf[:0]
					}
				}
			}
			if emitted == total {
				break
			}
		}
	}
	if len(outBuf) > 0 {
		return out.WriteAll(outBuf)
	}
	return nil
}
