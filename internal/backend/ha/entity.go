package ha

import (
	"encoding/json"
	"strings"
)

// EntityState is the subset of HA's /api/states entity shape this adapter
// consumes.
type EntityState struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// SystemConfig is the subset of /api/config this adapter keeps.
type SystemConfig struct {
	TimeZone  string  `json:"time_zone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SensorKind is the binary_sensor classification derived from
// device_class (spec.md §4.6).
type SensorKind string

const (
	SensorKindNone   SensorKind = ""
	SensorKindMotion SensorKind = "motion"
	SensorKindContact SensorKind = "contact"
	SensorKindIgnore SensorKind = "ignore"
)

// ServiceKind is the Hue service type an ImportedEntity defaults to.
type ServiceKind string

const (
	ServiceKindLight   ServiceKind = "light"
	ServiceKindMotion  ServiceKind = "motion"
	ServiceKindContact ServiceKind = "contact"
)

// Capabilities records which Light fields an imported entity supports,
// so sparse realtime updates never downgrade them (spec.md §4.6's
// "Sparse state payloads MUST NOT downgrade capability flags").
type Capabilities struct {
	Brightness bool
	Color      bool
	ColorTemp  bool
}

// Empty reports whether c carries no capabilities at all — the "empty
// default set" a sparse realtime payload must never be allowed to
// overwrite a richer previously-known set with.
func (c Capabilities) Empty() bool {
	return !c.Brightness && !c.Color && !c.ColorTemp
}

// Merge keeps every previously-known capability, adding anything newly
// present in c (used for incoming sparse updates).
func (c Capabilities) Merge(prior Capabilities) Capabilities {
	return Capabilities{
		Brightness: c.Brightness || prior.Brightness,
		Color:      c.Color || prior.Color,
		ColorTemp:  c.ColorTemp || prior.ColorTemp,
	}
}

// ImportedEntity is the normalized form of one HA state, ready to be
// projected into the resource store.
type ImportedEntity struct {
	EntityID     string
	Domain       string
	ServiceKind  ServiceKind
	Available    bool
	On           bool
	BrightnessPct float64 // 0-100, only meaningful if Capabilities.Brightness
	XY           [2]float64
	Mirek        int
	Area         string
	Capabilities Capabilities
	SensorKind   SensorKind
}

var colorModesWithBrightness = map[string]bool{
	"brightness": true, "xy": true, "hs": true, "rgb": true, "rgbw": true, "rgbww": true,
}
var colorModesWithColor = map[string]bool{
	"xy": true, "hs": true, "rgb": true, "rgbw": true, "rgbww": true,
}

// ParseEntity normalizes one HA state into an ImportedEntity, applying
// the capability-inference and sensor-kind-detection rules of spec.md
// §4.6 step 4. Returns ok=false for any domain other than
// light/switch/binary_sensor.
func ParseEntity(s EntityState, area string) (ImportedEntity, bool) {
	domain, _, found := strings.Cut(s.EntityID, ".")
	if !found {
		return ImportedEntity{}, false
	}

	switch domain {
	case "light", "switch", "binary_sensor":
	default:
		return ImportedEntity{}, false
	}

	e := ImportedEntity{
		EntityID:  s.EntityID,
		Domain:    domain,
		Available: s.State != "unavailable",
		On:        s.State == "on",
		Area:      area,
	}

	colorMode, _ := s.Attributes["color_mode"].(string)

	switch domain {
	case "light":
		e.ServiceKind = ServiceKindLight

		_, hasBrightnessAttr := s.Attributes["brightness"]
		e.Capabilities.Brightness = hasBrightnessAttr || colorModesWithBrightness[colorMode]
		if b, ok := numericAttr(s.Attributes["brightness"]); ok {
			e.BrightnessPct = clamp(b/255*100, 0, 100)
		}

		_, hasXYAttr := s.Attributes["xy_color"]
		e.Capabilities.Color = colorModesWithColor[colorMode] || hasXYAttr
		if xy, ok := s.Attributes["xy_color"].([]any); ok && len(xy) == 2 {
			if x, ok := numericAttr(xy[0]); ok {
				e.XY[0] = x
			}
			if y, ok := numericAttr(xy[1]); ok {
				e.XY[1] = y
			}
		}

		_, hasCTAttr := s.Attributes["color_temp"]
		e.Capabilities.ColorTemp = colorMode == "color_temp" || hasCTAttr
		if ct, ok := numericAttr(s.Attributes["color_temp"]); ok {
			e.Mirek = int(ct)
		}

	case "switch":
		e.ServiceKind = ServiceKindLight // switches are surfaced as capability-less lights

	case "binary_sensor":
		deviceClass, _ := s.Attributes["device_class"].(string)
		e.SensorKind = sensorKindFor(deviceClass)
		if e.SensorKind == SensorKindMotion {
			e.ServiceKind = ServiceKindMotion
		} else {
			e.ServiceKind = ServiceKindContact
		}
	}

	return e, true
}

func sensorKindFor(deviceClass string) SensorKind {
	switch deviceClass {
	case "motion", "occupancy", "presence":
		return SensorKindMotion
	case "door", "opening", "window", "garage_door":
		return SensorKindContact
	default:
		return SensorKindIgnore
	}
}

func numericAttr(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
