package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8090" {
		t.Errorf("Expected Port to be 8090, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Resolver.Kind != "static" {
		t.Errorf("Expected Resolver.Kind to be static, got %s", cfg.Resolver.Kind)
	}

	if cfg.Resolver.Timeout != 5*time.Second {
		t.Errorf("Expected Resolver.Timeout to be 5s, got %s", cfg.Resolver.Timeout)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("RESOLVER_KIND", "http")
	os.Setenv("RESOLVER_BASE_URL", "http://contract-store:8080")
	os.Setenv("CONTRACT_THRESHOLDS", "parsed=60,legal_reviewed=never")
	os.Setenv("SWEEP_GROUPS", "fx-forwards, commodity-swaps")
	os.Setenv("LOG_LEVEL", "info")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("RESOLVER_KIND")
		os.Unsetenv("RESOLVER_BASE_URL")
		os.Unsetenv("CONTRACT_THRESHOLDS")
		os.Unsetenv("SWEEP_GROUPS")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Resolver.Kind != "http" {
		t.Errorf("Expected Resolver.Kind to be http, got %s", cfg.Resolver.Kind)
	}

	if cfg.ContractThresholds != "parsed=60,legal_reviewed=never" {
		t.Errorf("Unexpected ContractThresholds: %s", cfg.ContractThresholds)
	}

	if len(cfg.Sweep.Groups) != 2 || cfg.Sweep.Groups[0] != "fx-forwards" || cfg.Sweep.Groups[1] != "commodity-swaps" {
		t.Errorf("Unexpected Sweep.Groups: %v", cfg.Sweep.Groups)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestValidatePostgresResolverRequiresDatabaseURL(t *testing.T) {
	os.Setenv("RESOLVER_KIND", "postgres")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("RESOLVER_KIND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when RESOLVER_KIND=postgres without DATABASE_URL, got nil")
	}
}

func TestValidateHTTPResolverRequiresBaseURL(t *testing.T) {
	os.Setenv("RESOLVER_KIND", "http")
	os.Unsetenv("RESOLVER_BASE_URL")
	defer os.Unsetenv("RESOLVER_KIND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when RESOLVER_KIND=http without RESOLVER_BASE_URL, got nil")
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidResolverKind(t *testing.T) {
	os.Setenv("RESOLVER_KIND", "ldap")
	defer os.Unsetenv("RESOLVER_KIND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when RESOLVER_KIND is invalid, got nil")
	}
}

func TestGetEnvAsList(t *testing.T) {
	os.Setenv("TEST_LIST", "a, b ,c,,")
	defer os.Unsetenv("TEST_LIST")

	list := getEnvAsList("TEST_LIST", "")
	if len(list) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %v", len(list), list)
	}
	if list[1] != "b" {
		t.Errorf("Expected trimmed entry 'b', got %q", list[1])
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	if duration != 2*time.Hour {
		t.Errorf("Expected 2h, got %s", duration)
	}

	// Invalid value falls back to default
	os.Setenv("TEST_DURATION", "bogus")
	duration = getEnvAsDuration("TEST_DURATION", "1h")
	if duration != time.Hour {
		t.Errorf("Expected fallback 1h, got %s", duration)
	}
}
