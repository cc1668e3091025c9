package harun

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoadMissingFileFallsBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, err := Load(fs, "/runtime.yaml", "http://homeassistant.local:8123")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.URL != "http://homeassistant.local:8123" {
		t.Errorf("URL = %q, want fallback", c.URL)
	}
	if c.SyncMode != SyncModeManual {
		t.Errorf("SyncMode = %q, want manual", c.SyncMode)
	}
}

func TestLoadEmptyURLUsesFallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/runtime.yaml", []byte("enabled: true\n"), 0o644)

	c, err := Load(fs, "/runtime.yaml", "http://fallback:8123")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.Enabled {
		t.Error("Enabled not preserved from file")
	}
	if c.URL != "http://fallback:8123" {
		t.Errorf("URL = %q, want fallback", c.URL)
	}
}

func TestPublicRedactsToken(t *testing.T) {
	c := Config{Token: "secret", URL: "http://x", Enabled: true}
	pub := c.Public()
	if !pub.TokenPresent {
		t.Error("TokenPresent should be true")
	}
}

func TestParsedURLFailsOnEmpty(t *testing.T) {
	c := Config{}
	if _, err := c.ParsedURL(); err == nil {
		t.Fatal("expected service error on empty URL")
	}
}

func TestWebsocketURLSwapsScheme(t *testing.T) {
	c := Config{URL: "https://homeassistant.local:8123"}
	ws, err := c.WebsocketURL()
	if err != nil {
		t.Fatalf("WebsocketURL: %v", err)
	}
	if ws.Scheme != "wss" || ws.Path != "/api/websocket" {
		t.Errorf("WebsocketURL = %s, want wss scheme and /api/websocket path", ws)
	}
}
