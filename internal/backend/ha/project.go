package ha

import "github.com/eriknyberg/huebridge/internal/model"

// d65X/d65Y are the CIE D65 white-point default xy coordinates used when
// a light has never reported a color (spec.md §4.6).
const (
	d65X = 0.3127
	d65Y = 0.3290

	defaultMirek = 366
)

// ProjectLight builds (or updates in place) a Light resource body from an
// ImportedEntity, applying spec.md §4.6's "Light state projection" rules:
// unknown fields retain the prior value rather than reverting to a
// capability-less default, and a capability-less category clears every
// color field outright.
func ProjectLight(prior model.Light, e ImportedEntity) model.Light {
	l := prior
	l.On = model.OnState{On: e.On}

	if e.ServiceKind != ServiceKindLight || (!e.Capabilities.Brightness && !e.Capabilities.Color && !e.Capabilities.ColorTemp) {
		l.Dimming = nil
		l.ColorTemperature = nil
		l.Color = nil
		return l
	}

	if e.Capabilities.Brightness {
		pct := e.BrightnessPct
		if pct == 0 && l.Dimming != nil {
			pct = l.Dimming.Brightness
		} else if pct == 0 {
			pct = 100
		}
		l.Dimming = &model.Dimming{Brightness: pct}
	} else {
		l.Dimming = nil
	}

	if e.Capabilities.Color {
		xy := model.XY{X: d65X, Y: d65Y}
		if e.XY[0] != 0 || e.XY[1] != 0 {
			xy = model.XY{X: e.XY[0], Y: e.XY[1]}
		} else if l.Color != nil {
			xy = l.Color.XY
		}
		l.Color = &model.Color{XY: xy}
	} else {
		l.Color = nil
	}

	if e.Capabilities.ColorTemp {
		mirek := defaultMirek
		if e.Mirek != 0 {
			mirek = e.Mirek
		} else if l.ColorTemperature != nil {
			mirek = l.ColorTemperature.Mirek
		}
		l.ColorTemperature = &model.ColorTemperature{Mirek: mirek, MirekValid: true, MirekSchema: "default"}
	} else {
		l.ColorTemperature = nil
	}

	return l
}

// MergeRealtimeCapabilities applies the "sparse update never downgrades
// capabilities" rule: if incoming reports the empty-default capability
// set, the prior set survives untouched.
func MergeRealtimeCapabilities(prior, incoming Capabilities) Capabilities {
	if incoming.Empty() {
		return prior
	}
	return incoming.Merge(prior)
}
