package codec

import (
	"crunch/internal/fileio"
)

// Vigenère works byte-by-byte over the ASCII letter alphabet. Letters are
// shifted modulo 26, case preserved; every other byte passes through
// unchanged and does not consume a key position. Output length always
// equals input length.

const vigBufSize = 4096

// keyValue maps A-Z and a-z uniformly onto 0..25; anything else is 0.
func keyValue(c byte) int {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	default:
		return 0
	}
}

// EncryptVigenere shifts forward by the key.
func EncryptVigenere(inputPath, outputPath, key string) error {
	return vigenereTransform(inputPath, outputPath, key, false)
}

// DecryptVigenere shifts backward by the key.
func DecryptVigenere(inputPath, outputPath, key string) error {
	return vigenereTransform(inputPath, outputPath, key, true)
}

func vigenereTransform(inputPath, outputPath, key string, decrypt bool) error {
	if key == "" {
		return ErrEmptyKey
	}

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
		inBuf  = make([]byte, vigBufSize)
		outBuf = make([]byte, vigBufSize)
		kIdx   int
	)
	for {
		n, err := in.Read(inBuf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		for i := 0; i < n; i++ {
			ch := inBuf[i]
			var base byte
			switch {
			case ch >= 'A' && ch <= 'Z':
				base = 'A'
			case ch >= 'a' && ch <= 'z':
				base = 'a'
			default:
				outBuf[i] = ch
				continue
			}
			shift := keyValue(key[kIdx%len(key)])
			if decrypt {
				shift = -shift
			}
			outBuf[i] = base + byte((int(ch-base)+shift+26)%26)
			kIdx++
		}
		if err := out.WriteAll(outBuf[:n]); err != nil {
			return err
		}
	}
}
