package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Iterations != 1 {
		t.Errorf("default iterations = %d, want 1", cfg.Iterations)
	}
	if cfg.Git.Remote != "origin" || cfg.Git.BranchPrefix != "looper" {
		t.Errorf("default git = %+v", cfg.Git)
	}
	if cfg.Proxy.Upstream != "http://localhost:4000" {
		t.Errorf("default proxy = %+v", cfg.Proxy)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	data := `prompt: tasks/PROMPT.md
iterations: 10
model: claude-opus-4
git:
  commit: true
  push: true
  branch-prefix: auto
proxy:
  enabled: true
  upstream: http://localhost:9999
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Prompt != "tasks/PROMPT.md" || cfg.Iterations != 10 || cfg.Model != "claude-opus-4" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Git.Commit || !cfg.Git.Push || cfg.Git.BranchPrefix != "auto" {
		t.Errorf("git = %+v", cfg.Git)
	}
	// Unset file values keep their defaults.
	if cfg.Git.Remote != "origin" {
		t.Errorf("remote = %q, want default origin", cfg.Git.Remote)
	}
	if !cfg.Proxy.Enabled || cfg.Proxy.Upstream != "http://localhost:9999" {
		t.Errorf("proxy = %+v", cfg.Proxy)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("malformed file should be an error")
	}
}

func TestLoad_ClampsIterations(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("iterations: 0"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Iterations != 1 {
		t.Errorf("iterations = %d, want clamped to 1", cfg.Iterations)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Prompt = "PROMPT.md"
	cfg.Iterations = 3
	cfg.Git.Commit = true

	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Prompt != "PROMPT.md" || loaded.Iterations != 3 || !loaded.Git.Commit {
		t.Errorf("round trip = %+v", loaded)
	}
}
