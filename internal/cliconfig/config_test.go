package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaultsWhenNoConfigFileExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error on missing config file: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected pure defaults, got %+v", cfg)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if err := os.WriteFile(path, []byte("historyCap: 50\nverbose: true\n"), 0o644); err != nil {
		t.Fatalf("write config.yaml: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HistoryCap != 50 {
		t.Fatalf("expected historyCap overridden to 50, got %d", cfg.HistoryCap)
	}
	if !cfg.Verbose {
		t.Fatalf("expected verbose overridden to true")
	}
	if cfg.SeedConvenience != Defaults().SeedConvenience {
		t.Fatalf("expected seedConvenience to keep its default since the file didn't set it, got %v", cfg.SeedConvenience)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if err := os.WriteFile(path, []byte("notARealField: true\n"), 0o644); err != nil {
		t.Fatalf("write config.yaml: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected an error decoding a config file with an unknown field")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Defaults()
	cfg.HistoryCap = 250
	cfg.Verbose = true

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("expected round-tripped config to equal saved config, got %+v want %+v", loaded, cfg)
	}
}

func TestDirIsCreatedUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	want := filepath.Join(home, ".evaluator")
	if dir != want {
		t.Fatalf("expected dir %q, got %q", want, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected Dir() to create the directory, stat error: %v", err)
	}
}
