// Package codec implements the on-disk transforms: three hand-rolled
// compressors (RLE, 16-bit LZW, static Huffman), an LZ4 frame wrapper, and
// two ciphers (byte-level Vigenère, AES-128-CBC). Every codec is a pure
// function from an input path to a truncate-created output path; the
// container formats are documented per codec file and all multi-byte
// integers are little-endian.
package codec

import (
	"errors"
	"fmt"
	"strings"
)

// CompressionAlg selects a compressor. The set is closed; dispatch is an
// exhaustive switch.
type CompressionAlg int

const (
	CompressionUnknown CompressionAlg = iota
	RLE
	LZW
	Huffman
	LZ4
)

// EncryptionAlg selects a cipher.
type EncryptionAlg int

const (
	EncryptionUnknown EncryptionAlg = iota
	Vigenere
	AES128
)

var (
	ErrEmptyKey         = errors.New("codec: key must not be empty")
	ErrBadCode          = errors.New("codec: code outside dictionary range")
	ErrBadContainer     = errors.New("codec: malformed container")
	ErrBadPadding       = errors.New("codec: invalid pkcs#7 padding")
	ErrUnknownAlgorithm = errors.New("codec: unknown algorithm")
)

func (a CompressionAlg) String() string {
	switch a {
	case RLE:
		return "RLE"
	case LZW:
		return "LZW"
	case Huffman:
		return "Huffman"
	case LZ4:
		return "LZ4"
	default:
		return "unknown"
	}
}

func (a EncryptionAlg) String() string {
	switch a {
	case Vigenere:
		return "Vigenere"
	case AES128:
		return "AES-128"
	default:
		return "unknown"
	}
}

// ParseCompression maps a selector name to a CompressionAlg.
func ParseCompression(name string) (CompressionAlg, error) {
	switch strings.ToUpper(name) {
	case "RLE":
		return RLE, nil
	case "LZW":
		return LZW, nil
	case "HUFF", "HUFFMAN":
		return Huffman, nil
	case "LZ4":
		return LZ4, nil
	default:
		return CompressionUnknown, fmt.Errorf("unknown compression algorithm %q", name)
	}
}

// ParseEncryption maps a selector name to an EncryptionAlg.
func ParseEncryption(name string) (EncryptionAlg, error) {
	switch strings.ToUpper(name) {
	case "VIG", "VIGENERE":
		return Vigenere, nil
	case "AES", "AES128", "AES-128":
		return AES128, nil
	default:
		return EncryptionUnknown, fmt.Errorf("unknown encryption algorithm %q", name)
	}
}

// Compress runs the selected compressor from inputPath to outputPath.
func Compress(alg CompressionAlg, inputPath, outputPath string) error {
	switch alg {
	case RLE:
		return CompressRLE(inputPath, outputPath)
	case LZW:
		return CompressLZW(inputPath, outputPath)
	case Huffman:
		return CompressHuffman(inputPath, outputPath)
	case LZ4:
		return CompressLZ4(inputPath, outputPath)
	default:
		return fmt.Errorf("compress: %w (%d)", ErrUnknownAlgorithm, alg)
	}
}

// Decompress runs the selected decompressor from inputPath to outputPath.
func Decompress(alg CompressionAlg, inputPath, outputPath string) error {
	switch alg {
	case RLE:
		return DecompressRLE(inputPath, outputPath)
	case LZW:
		return DecompressLZW(inputPath, outputPath)
	case Huffman:
		return DecompressHuffman(inputPath, outputPath)
	case LZ4:
		return DecompressLZ4(inputPath, outputPath)
	default:
		return fmt.Errorf("decompress: %w (%d)", ErrUnknownAlgorithm, alg)
	}
}

// Encrypt runs the selected cipher from inputPath to outputPath.
func Encrypt(alg EncryptionAlg, inputPath, outputPath, key string) error {
	switch alg {
	case Vigenere:
		return EncryptVigenere(inputPath, outputPath, key)
	case AES128:
		return EncryptAES128(inputPath, outputPath, key)
	default:
		return fmt.Errorf("encrypt: %w (%d)", ErrUnknownAlgorithm, alg)
	}
}

// Decrypt runs the selected cipher inverse from inputPath to outputPath.
func Decrypt(alg EncryptionAlg, inputPath, outputPath, key string) error {
	switch alg {
	case Vigenere:
		return DecryptVigenere(inputPath, outputPath, key)
	case AES128:
		return DecryptAES128(inputPath, outputPath, key)
	default:
		return fmt.Errorf("decrypt: %w (%d)", ErrUnknownAlgorithm, alg)
	}
}
