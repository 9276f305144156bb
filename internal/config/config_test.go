package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.JournalDir != "journal" || cfg.Workers != 0 || cfg.Strict {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg != Default() {
		t.Fatalf("missing file changed config: %+v", cfg)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg != Default() {
		t.Fatalf("Load(\"\") = %+v, %v", cfg, err)
	}
}

func TestLoadReadsAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	content := []byte("workers: 8\njournal_dir: logs\nstrict: true\nverbose: true\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 8 || cfg.JournalDir != "logs" || !cfg.Strict || !cfg.Verbose {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadRejectsNegativeWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	if err := os.WriteFile(path, []byte("workers: -2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative workers")
	}
}

func TestLoadFillsEmptyJournalDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	if err := os.WriteFile(path, []byte("journal_dir: \"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JournalDir != "journal" {
		t.Fatalf("JournalDir = %q, want journal", cfg.JournalDir)
	}
}
