package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	BatchSize int `env:"CHASSE_SPACE_TEST_BATCH_SIZE" envDefault:"32"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.BatchSize != 32 {
		t.Fatalf("expected default batch size 32, got %d", cfg.BatchSize)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CHASSE_SPACE_TEST_BATCH_SIZE", "8")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.BatchSize != 8 {
		t.Fatalf("expected batch size 8, got %d", cfg.BatchSize)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CHASSE_SPACE_TEST_BATCH_SIZE", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
