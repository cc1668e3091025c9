package ha

import (
	"testing"

	"github.com/eriknyberg/huebridge/internal/model"
)

func modelLightBare() model.Light {
	return model.Light{}
}

func modelLightWithColor() model.Light {
	return model.Light{Color: &model.Color{XY: model.XY{X: 0.5, Y: 0.4}}}
}

func TestProjectLightClearsColorForCapabilityLessLight(t *testing.T) {
	prior := modelLightWithColor()
	e := ImportedEntity{ServiceKind: ServiceKindLight, On: true}

	got := ProjectLight(prior, e)

	if got.Dimming != nil || got.Color != nil || got.ColorTemperature != nil {
		t.Fatalf("expected every color field cleared for capability-less light, got %+v", got)
	}
	if !got.On.On {
		t.Fatal("expected On to reflect the entity state")
	}
}

func TestProjectLightDefaultsToD65WhenNeverReported(t *testing.T) {
	e := ImportedEntity{ServiceKind: ServiceKindLight, Capabilities: Capabilities{Color: true}}

	got := ProjectLight(modelLightBare(), e)

	if got.Color == nil {
		t.Fatal("expected Color to be set")
	}
	if got.Color.XY.X != d65X || got.Color.XY.Y != d65Y {
		t.Fatalf("expected D65 default xy, got %+v", got.Color.XY)
	}
}

func TestProjectLightRetainsPriorColorWhenSparse(t *testing.T) {
	prior := modelLightWithColor()
	e := ImportedEntity{ServiceKind: ServiceKindLight, Capabilities: Capabilities{Color: true}}

	got := ProjectLight(prior, e)

	if got.Color.XY != prior.Color.XY {
		t.Fatalf("expected prior xy retained, got %+v want %+v", got.Color.XY, prior.Color.XY)
	}
}

func TestProjectLightMirekDefaultsTo366(t *testing.T) {
	e := ImportedEntity{ServiceKind: ServiceKindLight, Capabilities: Capabilities{ColorTemp: true}}

	got := ProjectLight(modelLightBare(), e)

	if got.ColorTemperature == nil || got.ColorTemperature.Mirek != defaultMirek {
		t.Fatalf("expected default mirek %d, got %+v", defaultMirek, got.ColorTemperature)
	}
	if got.ColorTemperature.MirekSchema != "default" || !got.ColorTemperature.MirekValid {
		t.Fatalf("expected mirek_schema=default mirek_valid=true, got %+v", got.ColorTemperature)
	}
}

func TestProjectLightBrightnessDefaultsTo100(t *testing.T) {
	e := ImportedEntity{ServiceKind: ServiceKindLight, Capabilities: Capabilities{Brightness: true}}

	got := ProjectLight(modelLightBare(), e)

	if got.Dimming == nil || got.Dimming.Brightness != 100 {
		t.Fatalf("expected default brightness 100, got %+v", got.Dimming)
	}
}

func TestMergeRealtimeCapabilitiesNeverDowngrades(t *testing.T) {
	prior := Capabilities{Brightness: true, Color: true}
	incoming := Capabilities{}

	got := MergeRealtimeCapabilities(prior, incoming)

	if got != prior {
		t.Fatalf("expected empty incoming to leave prior capabilities untouched, got %+v", got)
	}
}

func TestMergeRealtimeCapabilitiesAddsNew(t *testing.T) {
	prior := Capabilities{Brightness: true}
	incoming := Capabilities{ColorTemp: true}

	got := MergeRealtimeCapabilities(prior, incoming)

	if !got.Brightness || !got.ColorTemp {
		t.Fatalf("expected union of capabilities, got %+v", got)
	}
}
