package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.Physics.DT <= 0 {
		t.Error("expected positive dt")
	}
	if cfg.Derived.TargetFrame <= 0 {
		t.Error("expected derived frame budget")
	}
	if cfg.Derived.Workers < 1 {
		t.Error("expected at least one worker")
	}

	// Harmonic ratio 0 falls back to the golden ratio.
	if math.Abs(float64(cfg.Derived.HarmonicRatio)-goldenRatio) > 1e-6 {
		t.Errorf("expected golden ratio fallback, got %f", cfg.Derived.HarmonicRatio)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("physics:\n  spring_stiffness: 99\nwave:\n  harmonic_ratio: 2.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config file: %v", err)
	}

	if cfg.Physics.SpringStiffness != 99 {
		t.Errorf("override not applied, stiffness %f", cfg.Physics.SpringStiffness)
	}
	if cfg.Wave.HarmonicRatio != 2.5 {
		t.Errorf("override not applied, harmonic ratio %f", cfg.Wave.HarmonicRatio)
	}
	// Untouched fields keep defaults.
	if cfg.Physics.SpringDamping <= 0 {
		t.Error("default damping lost after merge")
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
