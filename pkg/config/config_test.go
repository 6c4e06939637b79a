package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WILDNUTS_JWT_SECRET", "test-secret")
	t.Setenv("WILDNUTS_SHEET_ID", "sheet-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Port != "8000" {
		t.Fatalf("expected default port 8000, got %s", cfg.App.Port)
	}
	if !cfg.App.IsDev() {
		t.Fatal("expected default env to be dev")
	}
	if cfg.Cache.TTL != 300*time.Second {
		t.Fatalf("expected 300s cache TTL, got %s", cfg.Cache.TTL)
	}
	if cfg.JWT.TokenTTL() != 24*time.Hour {
		t.Fatalf("expected 24h token TTL, got %s", cfg.JWT.TokenTTL())
	}
	if cfg.SMTP.Host != "smtp.gmail.com" || cfg.SMTP.Port != 587 {
		t.Fatalf("unexpected smtp defaults: %+v", cfg.SMTP)
	}
	if cfg.SMTP.Configured() {
		t.Fatal("smtp should be unconfigured without credentials")
	}
	if cfg.Redis.Configured() {
		t.Fatal("redis should be unconfigured without an endpoint")
	}
}

func TestLoadRequiresSheetIDWithoutMemoryStore(t *testing.T) {
	t.Setenv("WILDNUTS_JWT_SECRET", "test-secret")
	t.Setenv("WILDNUTS_SHEET_ID", "")
	t.Setenv("WILDNUTS_USE_MEMORY_STORE", "false")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when sheet id is missing")
	}
}

func TestLoadAllowsMemoryStoreWithoutSheetID(t *testing.T) {
	t.Setenv("WILDNUTS_JWT_SECRET", "test-secret")
	t.Setenv("WILDNUTS_SHEET_ID", "")
	t.Setenv("WILDNUTS_USE_MEMORY_STORE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.FeatureFlags.UseMemoryStore {
		t.Fatal("expected memory store flag to be set")
	}
}

func TestAdminConfigEnabled(t *testing.T) {
	if (AdminConfig{}).Enabled() {
		t.Fatal("empty admin config should be disabled")
	}
	admin := AdminConfig{Email: "ops@example.com", SecurityKey: "k"}
	if !admin.Enabled() {
		t.Fatal("expected admin config to be enabled")
	}
}
