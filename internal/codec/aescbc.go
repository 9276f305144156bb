package codec

import (
	"crypto/rand"
	"fmt"

	"crunch/internal/fileio"
)

// AES-128-CBC container: a 16-byte IV followed by ciphertext blocks; the
// last block carries PKCS#7 padding (a full 0x10 block when the plaintext
// is already block-aligned). The IV comes from the system's secure random
// source; if that source fails the codec fails, it never falls back to a
// predictable IV.

const aesBufSize = 64 * 1024

// EncryptAES128 encrypts inputPath into outputPath in CBC mode. At most
// one partial block is buffered between reads.
func EncryptAES128(inputPath, outputPath, key string) error {
	k, err := normalizeAESKey(key)
	if err != nil {
		return err
	}
	xk := expandKey(k)

	var iv [aesBlockSize]byte
	if _, err := rand.Read(iv[:]); err != nil {
		return fmt.Errorf("aes: secure random source unavailable: %w", err)
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

	if err := out.WriteAll(iv[:]); err != nil {
		return err
	}

	var (
		prev   = iv
		carry  [aesBlockSize]byte
		nCarry int
		outBuf = make([]byte, 0, aesBufSize)
	)
	encryptInto := func(p []byte) {
		var block [aesBlockSize]byte
		for i := 0; i < aesBlockSize; i++ {
			block[i] = p[i] ^ prev[i]
		}
		encryptBlock(&xk, &block)
		prev = block
		outBuf = append(outBuf, block[:]...)
	}

	buf := make([]byte, aesBufSize)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		data := buf[:n]
		if nCarry > 0 {
			need := aesBlockSize - nCarry
			if len(data) < need {
				nCarry += copy(carry[nCarry:], data)
				continue
			}
			copy(carry[nCarry:], data[:need])
			data = data[need:]
			nCarry = 0
			encryptInto(carry[:])
		}
		for len(data) >= aesBlockSize {
			encryptInto(data[:aesBlockSize])
			data = data[aesBlockSize:]
		}
		nCarry = copy(carry[:], data)

		if len(outBuf) >= aesBufSize {
			if err := out.WriteAll(outBuf); err != nil {
				return err
			}
			outBuf = outBuf[:0]
		}
	}

	// PKCS#7: always pad, a full block when already aligned.
	pad := byte(aesBlockSize - nCarry)
	for i := nCarry; i < aesBlockSize; i++ {
		carry[i] = pad
	}
	encryptInto(carry[:])
	return out.WriteAll(outBuf)
}

// DecryptAES128 decrypts an AES-128-CBC container from inputPath into
// outputPath. One decrypted block is held back so padding can be stripped
// from the final block; bad padding is a format error.
func DecryptAES128(inputPath, outputPath, key string) error {
	k, err := normalizeAESKey(key)
	if err != nil {
		return err
	}
	xk := expandKey(k)

	in, err := fileio.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var iv [aesBlockSize]byte
	n, err := in.ReadFull(iv[:])
	if err != nil {
		return err
	}
	if n < aesBlockSize {
		return fmt.Errorf("aes: missing iv: %w", ErrBadContainer)
	}

	out, err := fileio.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var (
		prev     = iv
		held     [aesBlockSize]byte
		haveHeld bool
		outBuf   = make([]byte, 0, aesBufSize)
	)
	buf := make([]byte, aesBufSize)
	for {
		n, err := in.ReadFull(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if n%aesBlockSize != 0 {
			return fmt.Errorf("aes: ciphertext not block-aligned: %w", ErrBadContainer)
		}
		for off := 0; off < n; off += aesBlockSize {
			if haveHeld {
				outBuf = append(outBuf, held[:]...)
			}
			var c, block [aesBlockSize]byte
			copy(c[:], buf[off:off+aesBlockSize])
			block = c
			decryptBlock(&xk, &block)
			for i := 0; i < aesBlockSize; i++ {
				held[i] = block[i] ^ prev[i]
			}
			prev = c
			haveHeld = true
		}
		if len(outBuf) >= aesBufSize {
			if err := out.WriteAll(outBuf); err != nil {
				return err
			}
			outBuf = outBuf[:0]
		}
	}
	if !haveHeld {
		return fmt.Errorf("aes: empty ciphertext: %w", ErrBadContainer)
	}

	pad := held[aesBlockSize-1]
	if pad < 1 || pad > aesBlockSize {
		return fmt.Errorf("aes: padding byte %d: %w", pad, ErrBadPadding)
	}
	for i := aesBlockSize - int(pad); i < aesBlockSize; i++ {
		if held[i] != pad {
			return fmt.Errorf("aes: inconsistent padding: %w", ErrBadPadding)
		}
	}
	outBuf = append(outBuf, held[:aesBlockSize-int(pad)]...)
	return out.WriteAll(outBuf)
}
