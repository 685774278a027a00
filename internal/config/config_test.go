package config

import (
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}

	if cfg.APIBaseURL == "" {
		t.Fatalf("expected default API base URL")
	}
	if cfg.APITimeout != 10*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.APITimeout)
	}
	if cfg.ARPackageName != "com.ksit.ar" {
		t.Fatalf("unexpected default AR package: %q", cfg.ARPackageName)
	}
}

func TestLoadEnvHonorsOverrides(t *testing.T) {
	t.Setenv("KSIT_API_BASE_URL", "http://localhost:3000/api")
	t.Setenv("KSIT_API_TIMEOUT", "30s")
	t.Setenv("KSIT_UE_PACKAGE_NAME", "com.ksit.ar.staging")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:3000/api" {
		t.Fatalf("unexpected API base URL: %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.APITimeout)
	}
	if cfg.ARPackageName != "com.ksit.ar.staging" {
		t.Fatalf("unexpected AR package: %q", cfg.ARPackageName)
	}
}
