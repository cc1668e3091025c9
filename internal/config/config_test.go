package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("HASS_TOKEN_TEST", "secret123")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "home_assistant:\n  url: \"${HASS_URL_TEST:http://homeassistant.local:8123}\"\n  token_env_name: \"${HASS_TOKEN_TEST}\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HA.URL != "http://homeassistant.local:8123" {
		t.Fatalf("expected default substitution, got %q", cfg.HA.URL)
	}
	if cfg.HA.TokenEnvName != "secret123" {
		t.Fatalf("expected env var substitution, got %q", cfg.HA.TokenEnvName)
	}
}

func TestDefaultsAppliedWhenFieldsAreZero(t *testing.T) {
	var cfg Config

	if got := cfg.Bridge.GetBridgeID(); got != DefaultBridgeID {
		t.Fatalf("expected default bridge id, got %q", got)
	}
	if got := cfg.Bridge.GetTimeZone(); got != DefaultTimeZone {
		t.Fatalf("expected default timezone, got %q", got)
	}
	if got := cfg.State.GetPath(); got != DefaultStatePath {
		t.Fatalf("expected default state path, got %q", got)
	}
	if got := cfg.HA.GetTokenEnvName(); got != DefaultHATokenEnvName {
		t.Fatalf("expected default token env name, got %q", got)
	}
	if got := cfg.Z2M.GetFPS(); got != DefaultZ2MFPS {
		t.Fatalf("expected default fps, got %d", got)
	}
	if got := cfg.RequestBus.GetCapacity(); got != DefaultRequestBusCapacity {
		t.Fatalf("expected default request bus capacity, got %d", got)
	}
	if got := cfg.EventStream.GetCapacity(); got != DefaultEventStreamCapacity {
		t.Fatalf("expected default event stream capacity, got %d", got)
	}
	if got := cfg.GetShutdownTimeout(); got != DefaultShutdownTimeout {
		t.Fatalf("expected default shutdown timeout, got %v", got)
	}
	if got := cfg.HTTP.GetListenAddr(); got != DefaultHTTPListenAddr {
		t.Fatalf("expected default HTTP listen addr, got %q", got)
	}
	if got := cfg.HTTP.GetReadTimeout(); got != DefaultHTTPReadTimeout {
		t.Fatalf("expected default HTTP read timeout, got %v", got)
	}
	if got := cfg.HTTP.GetWriteTimeout(); got != DefaultHTTPWriteTimeout {
		t.Fatalf("expected default HTTP write timeout, got %v", got)
	}
	if got := cfg.HTTP.GetSSEKeepAlive(); got != DefaultSSEKeepAlive {
		t.Fatalf("expected default SSE keep-alive, got %v", got)
	}
}

func TestDurationUnmarshalsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("shutdown_timeout: \"2s\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetShutdownTimeout() != 2*time.Second {
		t.Fatalf("expected 2s shutdown timeout, got %v", cfg.GetShutdownTimeout())
	}
}

func TestExpandEnvStringOnlyExpandsFullyWrapped(t *testing.T) {
	t.Setenv("SOME_VAR", "value")

	if got := ExpandEnvString("${SOME_VAR}"); got != "value" {
		t.Fatalf("expected expansion, got %q", got)
	}
	if got := ExpandEnvString("prefix-${SOME_VAR}"); got != "prefix-${SOME_VAR}" {
		t.Fatalf("expected no expansion for partially-wrapped string, got %q", got)
	}
}
