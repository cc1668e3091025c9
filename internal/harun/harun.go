// Package harun is the HA Runtime Config Store (spec.md §4.8): the small
// persisted document carrying the live Home Assistant connection state —
// separate from haconfig's UI preferences document because this one
// holds a credential and is mutated far more rarely.
package harun

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/eriknyberg/huebridge/internal/errs"
)

// SyncMode is the persisted HA sync mode (manual or auto). It is stored
// and reported by PublicConfig; the HA backend adapter does not read it.
type SyncMode string

const (
	SyncModeManual SyncMode = "manual"
	SyncModeAuto   SyncMode = "auto"
)

// Config is the runtime connection document.
type Config struct {
	Enabled  bool     `yaml:"enabled"`
	URL      string   `yaml:"url"`
	SyncMode SyncMode `yaml:"sync_mode"`
	Token    string   `yaml:"token,omitempty"`
}

// Load reads path, falling back to defaults on a missing file: an empty
// URL is filled from fallbackURL and an empty sync mode becomes "manual".
func Load(fs afero.Fs, path, fallbackURL string) (Config, error) {
	var c Config

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("reading HA runtime config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parsing HA runtime config %s: %w", path, err)
	}

	if c.URL == "" {
		c.URL = fallbackURL
	}
	if c.SyncMode == "" {
		c.SyncMode = SyncModeManual
	}
	return c, nil
}

// Save persists c to path.
func Save(fs afero.Fs, path string, c Config) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling HA runtime config: %w", err)
	}
	if err := afero.WriteFile(fs, path, out, 0o600); err != nil {
		return fmt.Errorf("writing HA runtime config %s: %w", path, err)
	}
	return nil
}

// PublicConfig is Config with the token redacted to a presence flag, for
// the UI endpoint that reports connection state without leaking it.
type PublicConfig struct {
	Enabled      bool     `json:"enabled"`
	URL          string   `json:"url"`
	SyncMode     SyncMode `json:"sync_mode"`
	TokenPresent bool     `json:"token_present"`
}

// Public renders c as its redacted form.
func (c Config) Public() PublicConfig {
	return PublicConfig{
		Enabled:      c.Enabled,
		URL:          c.URL,
		SyncMode:     c.SyncMode,
		TokenPresent: c.Token != "",
	}
}

// ParsedURL parses c.URL, failing with errs.ErrService on an empty or
// malformed value — the adapter has no usable fallback at this point.
func (c Config) ParsedURL() (*url.URL, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("%w: HA runtime config has no URL", errs.ErrService)
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: malformed HA URL %q", errs.ErrService, c.URL)
	}
	return u, nil
}

// WebsocketURL derives the /api/websocket endpoint from c's REST URL,
// swapping the scheme to ws/wss (spec.md §4.5: "Websocket URL is the REST
// URL with scheme ws/wss and path /api/websocket").
func (c Config) WebsocketURL() (*url.URL, error) {
	u, err := c.ParsedURL()
	if err != nil {
		return nil, err
	}
	ws := *u
	switch u.Scheme {
	case "https":
		ws.Scheme = "wss"
	default:
		ws.Scheme = "ws"
	}
	ws.Path = "/api/websocket"
	return &ws, nil
}
