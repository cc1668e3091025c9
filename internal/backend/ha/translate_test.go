package ha

import (
	"testing"

	"github.com/eriknyberg/huebridge/internal/model"
)

func TestTranslateLightUpdateTurnOffShortCircuits(t *testing.T) {
	u := LightUpdate{On: &model.OnState{On: false}, Dimming: &model.Dimming{Brightness: 50}}

	got := TranslateLightUpdate("light.kitchen", false, u)

	if got.Service != "turn_off" {
		t.Fatalf("expected turn_off, got %s", got.Service)
	}
	if _, ok := got.Data["brightness"]; ok {
		t.Fatal("turn_off must not carry brightness data")
	}
}

func TestTranslateLightUpdateAggregatesFields(t *testing.T) {
	u := LightUpdate{
		On:               &model.OnState{On: true},
		Dimming:          &model.Dimming{Brightness: 50},
		Color:            &model.Color{XY: model.XY{X: 0.3, Y: 0.3}},
		ColorTemperature: &model.ColorTemperature{Mirek: 300},
		Dynamics:         &model.Dynamics{Duration: 2000},
	}

	got := TranslateLightUpdate("light.kitchen", false, u)

	if got.Domain != "light" || got.Service != "turn_on" {
		t.Fatalf("expected light.turn_on, got %s.%s", got.Domain, got.Service)
	}
	if got.Data["brightness"] != 128 {
		t.Fatalf("expected brightness 128 (round(50*255/100)), got %v", got.Data["brightness"])
	}
	if got.Data["transition"] != 2.0 {
		t.Fatalf("expected transition 2s, got %v", got.Data["transition"])
	}
}

func TestTranslateLightUpdateSwitchDropsColorData(t *testing.T) {
	u := LightUpdate{On: &model.OnState{On: true}, Dimming: &model.Dimming{Brightness: 80}}

	got := TranslateLightUpdate("switch.lamp", true, u)

	if got.Domain != "switch" {
		t.Fatalf("expected switch domain, got %s", got.Domain)
	}
	if _, ok := got.Data["brightness"]; ok {
		t.Fatal("switch service calls must not carry brightness data")
	}
}

func TestSceneNameTruncatesToTwelveHex(t *testing.T) {
	got := SceneName("0123456789abcdefextra")
	want := "bifrost_0123456789ab"
	if got != want {
		t.Fatalf("SceneName = %q, want %q", got, want)
	}
}
