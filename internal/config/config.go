// Package config loads the bridge's single YAML configuration document:
// bridge identity, state file location, HA/Z2M connection defaults, and
// bus/stream sizing. Defaults live in accessor methods, never in the
// zero-value struct, so a nearly-empty config file is always valid.
package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the whole application configuration.
type Config struct {
	Bridge          BridgeConfig      `yaml:"bridge"`
	State           StateConfig       `yaml:"state"`
	HA              HAConfig          `yaml:"home_assistant"`
	Z2M             Z2MConfig         `yaml:"zigbee2mqtt"`
	RequestBus      RequestBusConfig  `yaml:"request_bus"`
	EventStream     EventStreamConfig `yaml:"event_stream"`
	HTTP            HTTPConfig        `yaml:"http"`
	Log             LogConfig         `yaml:"log"`
	ShutdownTimeout Duration          `yaml:"shutdown_timeout"`
}

// Default top-level values.
const (
	DefaultShutdownTimeout = 1 * time.Second
	DefaultBridgeID        = "0000000000000000"
	DefaultTimeZone        = "UTC"
)

// GetShutdownTimeout returns the graceful-stop grace period (spec.md §5:
// "≤1 s grace").
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == 0 {
		return DefaultShutdownTimeout
	}
	return c.ShutdownTimeout.Duration()
}

// BridgeConfig identifies the emulated bridge.
type BridgeConfig struct {
	BridgeID string `yaml:"bridge_id"`
	TimeZone string `yaml:"time_zone"`
}

// GetBridgeID returns the configured bridge id, defaulting to a fixed
// placeholder MAC-derived identity.
func (c *BridgeConfig) GetBridgeID() string {
	if c.BridgeID == "" {
		return DefaultBridgeID
	}
	return c.BridgeID
}

// GetTimeZone returns the configured timezone, best-guessing UTC.
func (c *BridgeConfig) GetTimeZone() string {
	if c.TimeZone == "" {
		return DefaultTimeZone
	}
	return c.TimeZone
}

// StateConfig locates the persisted resource-store and UI documents.
type StateConfig struct {
	Path          string `yaml:"path"`
	HAUIPath      string `yaml:"ha_ui_path"`
	HARuntimePath string `yaml:"ha_runtime_path"`
}

const (
	DefaultStatePath     = "state.yaml"
	DefaultHAUIPath      = "ha-ui.yaml"
	DefaultHARuntimePath = "ha-runtime.yaml"
)

func (c *StateConfig) GetPath() string {
	if c.Path == "" {
		return DefaultStatePath
	}
	return c.Path
}

func (c *StateConfig) GetHAUIPath() string {
	if c.HAUIPath == "" {
		return DefaultHAUIPath
	}
	return c.HAUIPath
}

func (c *StateConfig) GetHARuntimePath() string {
	if c.HARuntimePath == "" {
		return DefaultHARuntimePath
	}
	return c.HARuntimePath
}

// HAConfig carries the Home Assistant backend's static defaults; the
// mutable enabled/url/token triple lives in the HA runtime state file
// (internal/harun) and is merged with these as a fallback.
type HAConfig struct {
	URL          string   `yaml:"url"`
	TokenEnvName string   `yaml:"token_env_name"`
	Timeout      Duration `yaml:"timeout"`
}

const (
	DefaultHATokenEnvName = "HASS_TOKEN"
	DefaultHATimeout      = 10 * time.Second
)

func (c *HAConfig) GetTokenEnvName() string {
	if c.TokenEnvName == "" {
		return DefaultHATokenEnvName
	}
	return c.TokenEnvName
}

func (c *HAConfig) GetTimeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultHATimeout
	}
	return c.Timeout.Duration()
}

// Z2MConfig carries the Zigbee2MQTT backend's connection defaults.
type Z2MConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	FPS   int    `yaml:"fps"`
}

const DefaultZ2MFPS = 25

func (c *Z2MConfig) GetFPS() int {
	if c.FPS <= 0 {
		return DefaultZ2MFPS
	}
	return c.FPS
}

// RequestBusConfig sizes the Backend Request Bus (spec.md §5).
type RequestBusConfig struct {
	Capacity int `yaml:"capacity"`
}

const DefaultRequestBusCapacity = 32

func (c *RequestBusConfig) GetCapacity() int {
	if c.Capacity <= 0 {
		return DefaultRequestBusCapacity
	}
	return c.Capacity
}

// EventStreamConfig sizes the resource-store event ring (spec.md §5).
type EventStreamConfig struct {
	Capacity int `yaml:"capacity"`
}

const DefaultEventStreamCapacity = 128

func (c *EventStreamConfig) GetCapacity() int {
	if c.Capacity <= 0 {
		return DefaultEventStreamCapacity
	}
	return c.Capacity
}

// HTTPConfig sizes the (out of scope here) HTTP/SSE API layer that will
// eventually sit in front of the resource store. Carried in config now so
// that layer has somewhere to read its knobs from without another
// config-schema migration.
type HTTPConfig struct {
	ListenAddr   string   `yaml:"listen_addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	SSEKeepAlive Duration `yaml:"sse_keep_alive"`
}

const (
	DefaultHTTPListenAddr   = ":443"
	DefaultHTTPReadTimeout  = 10 * time.Second
	DefaultHTTPWriteTimeout = 10 * time.Second
	DefaultSSEKeepAlive     = 15 * time.Second
)

func (c *HTTPConfig) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultHTTPListenAddr
	}
	return c.ListenAddr
}

func (c *HTTPConfig) GetReadTimeout() time.Duration {
	if c.ReadTimeout == 0 {
		return DefaultHTTPReadTimeout
	}
	return c.ReadTimeout.Duration()
}

func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	if c.WriteTimeout == 0 {
		return DefaultHTTPWriteTimeout
	}
	return c.WriteTimeout.Duration()
}

func (c *HTTPConfig) GetSSEKeepAlive() time.Duration {
	if c.SSEKeepAlive == 0 {
		return DefaultSSEKeepAlive
	}
	return c.SSEKeepAlive.Duration()
}

// LogConfig controls the zerolog setup in cmd/huebridged.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty *bool  `yaml:"pretty"`
}

const DefaultLogLevel = "info"

func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return DefaultLogLevel
	}
	return c.Level
}

// IsPretty reports whether the console writer should be used; defaults
// to true since that only matters for an interactive terminal and the
// caller additionally checks whether stderr is a tty.
func (c *LogConfig) IsPretty() bool {
	if c.Pretty == nil {
		return true
	}
	return *c.Pretty
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file.
// Note: defaults are handled by accessor methods (Get* functions), not
// here. This keeps defaults centralized in one place per config type.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnvVars expands environment variables in the format ${VAR} or
// ${VAR:default}.
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}

// ExpandEnvString expands a single string with environment variables.
func ExpandEnvString(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return expandEnvVars(s)
	}
	return s
}
