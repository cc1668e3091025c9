// Package ha is the Home Assistant backend adapter (spec.md §4.6): a REST
// + websocket client that imports HA entities into the resource store,
// mirrors realtime state changes, and translates Hue intents from the
// Backend Request Bus into HA service calls.
package ha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eriknyberg/huebridge/internal/errs"
	"github.com/eriknyberg/huebridge/internal/harun"
)

// restTimeout bounds every HA REST call (spec.md §5: "HTTP client
// operations carry a default 10 s timeout").
const restTimeout = 10 * time.Second

// Client is the thin HA REST wrapper used by both the import pipeline and
// the command translator.
type Client struct {
	http *http.Client

	baseURL string
	token   string
}

// NewClient builds a Client from the runtime connection config. If
// cfg.Enabled is false it fails with a disconnected ErrService, so no
// Client exists for a disabled backend. An empty cfg.Token is read from
// the environment variable named by tokenEnvFallback.
func NewClient(cfg harun.Config, tokenEnvFallback string) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: home assistant backend disabled", errs.ErrService)
	}

	u, err := cfg.ParsedURL()
	if err != nil {
		return nil, err
	}

	token := cfg.Token
	if token == "" {
		token = os.Getenv(tokenEnvFallback)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no home assistant token configured", errs.ErrService)
	}

	return &Client{
		http:    &http.Client{Timeout: restTimeout},
		baseURL: u.String(),
		token:   token,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", errs.ErrService, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: GET %s: status %d", errs.ErrService, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encoding request body: %v", errs.ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, jsonReader(payload))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", errs.ErrService, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: POST %s: status %d", errs.ErrService, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// States fetches every HA entity state (step 1 of the import pipeline).
func (c *Client) States(ctx context.Context) ([]EntityState, error) {
	var states []EntityState
	if err := c.get(ctx, "/api/states", &states); err != nil {
		return nil, err
	}
	return states, nil
}

// SystemConfig fetches HA's own config (timezone/lat/long), step 2.
func (c *Client) SystemConfig(ctx context.Context) (SystemConfig, error) {
	var cfg SystemConfig
	if err := c.get(ctx, "/api/config", &cfg); err != nil {
		return SystemConfig{}, err
	}
	return cfg, nil
}

// EntityAreas runs the template query from step 3, returning entity_id ->
// area_name. Per spec.md §4.6 it falls back to an empty map on error
// rather than failing the whole import.
func (c *Client) EntityAreas(ctx context.Context) map[string]string {
	const template = `{% for s in states %}{{ s.entity_id }}|{{ area_name(s.entity_id) or "" }}
{% endfor %}`

	var rendered string
	if err := c.postJSON(ctx, "/api/template", map[string]string{"template": template}, &rendered); err != nil {
		log.Warn().Err(err).Msg("home assistant area template query failed, continuing without areas")
		return map[string]string{}
	}
	return parseEntityAreaLines(rendered)
}

// CallService invokes POST /api/services/<domain>/<service>.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	return c.postJSON(ctx, "/api/services/"+domain+"/"+service, data, nil)
}

func parseEntityAreaLines(rendered string) map[string]string {
	out := map[string]string{}
	for _, line := range splitLines(rendered) {
		entityID, area, ok := cutPipe(line)
		if !ok || entityID == "" {
			continue
		}
		out[entityID] = area
	}
	return out
}
