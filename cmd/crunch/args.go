package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Args is the decomposed argument vector. Chain holds the concatenated
// suffix characters of every non-reserved dash token, so "-ce" and
// "-c -e" both yield "ce".
type Args struct {
	Input      string
	Output     string
	CompName   string
	EncName    string
	Key        string
	KeySet     bool
	Chain      string
	Workers    int
	WorkersSet bool
	ConfigPath string
	JournalDir string
	Strict     bool
	Verbose    bool
	Diagnose   bool
}

// parseArgs scans the argument vector. Reserved forms take a value; any
// other token starting with '-' contributes its non-dash characters to the
// operation chain.
func parseArgs(argv []string) (Args, error) {
	var a Args
	next := func(i *int, flag string) (string, error) {
		*i++
		if *i >= len(argv) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return argv[*i], nil
	}
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		var err error
		switch tok {
		case "-i":
			a.Input, err = next(&i, tok)
		case "-o":
			a.Output, err = next(&i, tok)
		case "--comp-alg":
			a.CompName, err = next(&i, tok)
		case "--enc-alg":
			a.EncName, err = next(&i, tok)
		case "-k":
			a.Key, err = next(&i, tok)
			a.KeySet = true
		case "--workers":
			var v string
			if v, err = next(&i, tok); err == nil {
				a.Workers, err = strconv.Atoi(v)
				if err != nil || a.Workers < 1 {
					err = fmt.Errorf("--workers needs a positive integer, got %q", v)
				}
				a.WorkersSet = true
			}
		case "--config":
			a.ConfigPath, err = next(&i, tok)
		case "--journal-dir":
			a.JournalDir, err = next(&i, tok)
		case "--strict":
			a.Strict = true
		case "--verbose":
			a.Verbose = true
		case "--diagnose":
			a.Diagnose = true
		default:
			if !strings.HasPrefix(tok, "-") {
				return a, fmt.Errorf("unexpected argument %q", tok)
			}
			a.Chain += strings.ReplaceAll(tok, "-", "")
		}
		if err != nil {
			return a, err
		}
	}

	if a.Input == "" || a.Output == "" {
		return a, errors.New("input (-i) and output (-o) are required")
	}
	if a.Chain == "" {
		return a, errors.New("no operations given (e.g. -c, -e, -ce)")
	}
	return a, nil
}

func usage() string {
	return `Usage: crunch [operations] -i INPUT -o OUTPUT [options]

Operations (combine freely, applied in order):
  -c    compress        -d    decompress
  -e    encrypt         -u    decrypt

Options:
  -i PATH             input file or directory (required)
  -o PATH             output file or directory (required)
  --comp-alg NAME     RLE | LZW | Huff | Huffman | LZ4
  --enc-alg NAME      VIG | VIGENERE | Vigenere | AES | AES128 | AES-128
  -k STRING           key material (prompted when omitted for e/u)
  --workers N         worker count (default: CPU cores)
  --config PATH       YAML defaults file (default: crunch.yml if present)
  --journal-dir PATH  journal location (default: journal/)
  --strict            exit non-zero when any file fails
  --verbose           debug logging
  --diagnose          periodic runtime diagnostics

Example:
  crunch -ce -i data/ -o out/ --comp-alg LZW --enc-alg AES -k 'SuperSecretKey!!'`
}
