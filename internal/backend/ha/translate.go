package ha

import (
	"math"

	"github.com/eriknyberg/huebridge/internal/model"
)

// LightUpdate mirrors the store's partial Light update payload — only
// non-nil fields were touched by the request.
type LightUpdate struct {
	On               *model.OnState
	Dimming          *model.Dimming
	Color            *model.Color
	ColorTemperature *model.ColorTemperature
	Dynamics         *model.Dynamics
}

// ServiceCall is one HA `/api/services/<domain>/<service>` invocation,
// ready for Client.CallService.
type ServiceCall struct {
	Domain  string
	Service string
	Data    map[string]any
}

// TranslateLightUpdate implements spec.md §4.6's "Hue -> HA command
// translation": an explicit turn-off short-circuits to a bare
// light.turn_off; otherwise every touched field is aggregated into one
// light.turn_on (or switch.turn_on/off for capability-less entities).
func TranslateLightUpdate(entityID string, isSwitch bool, u LightUpdate) ServiceCall {
	domain := "light"
	if isSwitch {
		domain = "switch"
	}

	if u.On != nil && !u.On.On {
		return ServiceCall{Domain: domain, Service: "turn_off", Data: map[string]any{"entity_id": entityID}}
	}

	data := map[string]any{"entity_id": entityID}

	if !isSwitch {
		if u.Dimming != nil {
			data["brightness"] = clampInt(int(math.Round(u.Dimming.Brightness/100*255)), 0, 255)
		}
		if u.Color != nil {
			data["xy_color"] = []float64{u.Color.XY.X, u.Color.XY.Y}
		}
		if u.ColorTemperature != nil {
			data["color_temp"] = u.ColorTemperature.Mirek
		}
		if u.Dynamics != nil && u.Dynamics.Duration > 0 {
			data["transition"] = float64(u.Dynamics.Duration) / 1000
		}
	}

	return ServiceCall{Domain: domain, Service: "turn_on", Data: data}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SceneName derives the HA scene_id for a Hue scene create: "bifrost_"
// prefix plus the scene id truncated to 12 hex characters (spec.md §4.6).
func SceneName(sceneIDHex string) string {
	const prefix = "bifrost_"
	const maxHex = 12
	trimmed := sceneIDHex
	if len(trimmed) > maxHex {
		trimmed = trimmed[:maxHex]
	}
	return prefix + trimmed
}
