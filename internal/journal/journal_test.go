package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
)

func TestSanitizeTarget(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"data", "data"},
		{"/home/user/my docs", "my_docs"},
		{`weird:*?"<>|name`, "weird_______name"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tc := range cases {
		if got := SanitizeTarget(tc.in); got != tc.want {
			t.Fatalf("SanitizeTarget(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJournalNameAndLocation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	j, err := New(dir, "ce", "/data/input dir")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer j.Close()

	name := filepath.Base(j.Path())
	re := regexp.MustCompile(`^journal_ce_input_dir_\d{8}_\d{6}\.log$`)
	if !re.MatchString(name) {
		t.Fatalf("journal name %q does not match the expected pattern", name)
	}
	if filepath.Dir(j.Path()) != dir {
		t.Fatalf("journal written to %s, want %s", filepath.Dir(j.Path()), dir)
	}
	if j.RunID() == "" {
		t.Fatal("journal has no run ID")
	}
}

func TestJournalHeaderBlockSummary(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal"), "c", "input.bin")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	j.WriteHeader("compress(RLE)", "input.bin", "input.bin", "out.bin", 1, 2048)
	j.Log("starting")
	j.FileBlock(1, 1, "input.bin", "[12:00:00] stage 1/1 compress\n", "ok")
	j.WriteSummary("OK", 1, 2048)
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(j.Path())
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"OPERATION JOURNAL - FILE",
		"Operation: compress(RLE)",
		"Source: input.bin",
		"Destination: out.bin",
		"Run ID: " + j.RunID(),
		"File 1/1: input.bin",
		"File 1/1 completed: ok",
		"Run completed: OK",
		"Total time:",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("journal missing %q:\n%s", want, content)
		}
	}
}

func TestJournalFolderHeader(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal"), "ce", "indir")
	if err != nil {
		t.Fatal(err)
	}
	j.WriteHeader("compress(RLE) -> encrypt(AES-128)", "indir", "indir", "outdir", 7, 1<<20)
	j.Close()

	data, _ := os.ReadFile(j.Path())
	content := string(data)
	for _, want := range []string{"OPERATION JOURNAL - FOLDER", "Total files: 7", "Total size: 1.0 MB"} {
		if !strings.Contains(content, want) {
			t.Fatalf("folder header missing %q:\n%s", want, content)
		}
	}
}

// Blocks written by concurrent workers must land contiguously.
func TestFileBlocksNeverInterleave(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal"), "c", "indir")
	if err != nil {
		t.Fatal(err)
	}

	const workers = 16
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := fmt.Sprintf("line one of %d\nline two of %d\nline three of %d\n", w, w, w)
			j.FileBlock(w+1, workers, fmt.Sprintf("file-%d", w), body, "ok")
		}()
	}
	wg.Wait()
	j.Close()

	data, _ := os.ReadFile(j.Path())
	lines := strings.Split(string(data), "\n")
	// Each block's three body lines must appear consecutively.
	for i, line := range lines {
		if !strings.HasPrefix(line, "line one of ") {
			continue
		}
		id := strings.TrimPrefix(line, "line one of ")
		if lines[i+1] != "line two of "+id || lines[i+2] != "line three of "+id {
			t.Fatalf("block for %s interleaved around line %d", id, i)
		}
	}
	if got := strings.Count(string(data), "line one of "); got != workers {
		t.Fatalf("found %d blocks, want %d", got, workers)
	}
}
