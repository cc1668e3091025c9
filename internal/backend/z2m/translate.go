package z2m

import "github.com/eriknyberg/huebridge/internal/model"

// defaultTransition is used when no dynamics duration was supplied but
// something about the light did change (spec.md §4.5).
const defaultTransition = 0.4

// LightUpdate mirrors the store's partial Light update payload.
type LightUpdate struct {
	On               *model.OnState
	Dimming          *model.Dimming
	Color            *model.Color
	ColorTemperature *model.ColorTemperature
	Gradient         *model.Gradient
	Effects          *model.Effects
	Dynamics         *model.Dynamics
	Identify         bool
}

func (u LightUpdate) changed() bool {
	return u.On != nil || u.Dimming != nil || u.Color != nil || u.ColorTemperature != nil
}

// TranslateLightSet builds the generic z2m device-update payload for a
// LightUpdate, plus (when applicable) the separate Hue-proprietary binary
// effect payload carrying fade_speed=1. huePayload is nil when the update
// carries no gradient/effect/timed-effect fields.
func TranslateLightSet(u LightUpdate) (generic map[string]any, huePayload map[string]any) {
	transition := 0.0
	if u.Dynamics != nil && u.Dynamics.Duration > 0 {
		transition = float64(u.Dynamics.Duration) / 1000
	} else if u.changed() {
		transition = defaultTransition
	}

	generic = map[string]any{}
	if u.On != nil {
		if u.On.On {
			generic["state"] = "ON"
		} else {
			generic["state"] = "OFF"
		}
	}
	if u.Dimming != nil {
		generic["brightness"] = brightnessToZ2M(u.Dimming.Brightness)
	}
	if u.ColorTemperature != nil {
		generic["color_temp"] = u.ColorTemperature.Mirek
	}
	if u.Color != nil {
		generic["color"] = map[string]float64{"x": u.Color.XY.X, "y": u.Color.XY.Y}
	}
	if transition > 0 {
		generic["transition"] = transition
	}

	if u.Gradient != nil || u.Effects != nil {
		huePayload = map[string]any{"fade_speed": 1}
		if u.Gradient != nil {
			huePayload["gradient"] = u.Gradient.Points
		}
		if u.Effects != nil {
			if u.Effects.Effect != "" {
				huePayload["effect"] = u.Effects.Effect
			}
			if u.Effects.TimedEffect != "" {
				huePayload["timed_effect"] = u.Effects.TimedEffect
				huePayload["duration"] = u.Effects.Duration
			}
		}
	}

	return generic, huePayload
}

func brightnessToZ2M(pct float64) int {
	v := int(pct / 100 * 254)
	if v < 0 {
		return 0
	}
	if v > 254 {
		return 254
	}
	return v
}

// IdentifyPayload is the breathe-effect set command Identify sends; the
// adapter schedules a FinishEffectPayload after LightBreatheDuration.
var IdentifyPayload = map[string]any{"effect": "breathe"}

// FinishEffectPayload cancels the breathe effect.
var FinishEffectPayload = map[string]any{"effect": "finish_effect"}

// LightBreatheDuration is how long an identify breathe effect runs before
// the adapter sends FinishEffectPayload (spec.md §4.5: "≈4 s").
const LightBreatheDuration = 4 * 1000 // milliseconds, kept as an int to avoid importing time in tests that only check the constant

// DiffRoomMembers returns the friendly names added to and removed from a
// room's child set (spec.md §4.5 RoomUpdate: "diff against current
// children").
func DiffRoomMembers(previous, current []string) (added, removed []string) {
	prevSet := make(map[string]bool, len(previous))
	for _, name := range previous {
		prevSet[name] = true
	}
	currSet := make(map[string]bool, len(current))
	for _, name := range current {
		currSet[name] = true
	}

	for _, name := range current {
		if !prevSet[name] {
			added = append(added, name)
		}
	}
	for _, name := range previous {
		if !currSet[name] {
			removed = append(removed, name)
		}
	}
	return added, removed
}

// ResolveSegmentAddresses implements spec.md §4.5's EntertainmentStart
// channel resolution: each channel member's Zigbee address is the owning
// device's network_address plus the member's stream index, grouped by
// the friendly name serving that channel member.
func ResolveSegmentAddresses(channels []model.Channel, friendlyNameFor func(service interface{ IsZero() bool }) (string, bool), infoFor func(friendlyName string) (DeviceInfo, bool)) []SegmentAddress {
	var out []SegmentAddress
	for _, ch := range channels {
		for _, member := range ch.Members {
			name, ok := friendlyNameFor(member.Service)
			if !ok {
				continue
			}
			info, ok := infoFor(name)
			if !ok {
				continue
			}
			out = append(out, SegmentAddress{FriendlyName: name, Address: info.NetworkAddress + member.Index})
		}
	}
	return out
}
