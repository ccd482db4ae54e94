package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	if want := defaultConfig(); cfg != want {
		t.Errorf("loadConfig(\"\") = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("loadConfig on a missing file should not error: %v", err)
	}
	if want := defaultConfig(); cfg != want {
		t.Errorf("loadConfig(missing) = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadConfigOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minijs.yaml")
	if err := os.WriteFile(path, []byte("ps1: \"js> \"\ngc_verbose: true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.PS1 != "js> " {
		t.Errorf("PS1 = %q, want %q", cfg.PS1, "js> ")
	}
	if !cfg.GCVerbose {
		t.Errorf("GCVerbose = false, want true")
	}
	// PS2 is untouched by the overlay and should keep its default.
	if want := defaultConfig().PS2; cfg.PS2 != want {
		t.Errorf("PS2 = %q, want unchanged default %q", cfg.PS2, want)
	}
}

func TestLoadConfigMalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minijs.yaml")
	if err := os.WriteFile(path, []byte("ps1: [this is not a string\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Errorf("expected an error for malformed YAML")
	}
}
