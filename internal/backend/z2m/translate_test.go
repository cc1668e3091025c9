package z2m

import (
	"testing"

	"github.com/eriknyberg/huebridge/internal/model"
)

func TestTranslateLightSetStateAndBrightness(t *testing.T) {
	u := LightUpdate{
		On:      &model.OnState{On: true},
		Dimming: &model.Dimming{Brightness: 50},
	}

	generic, hue := TranslateLightSet(u)

	if generic["state"] != "ON" {
		t.Fatalf("expected state ON, got %v", generic["state"])
	}
	if generic["brightness"] != 127 {
		t.Fatalf("expected brightness 127, got %v", generic["brightness"])
	}
	if generic["transition"] != defaultTransition {
		t.Fatalf("expected default transition, got %v", generic["transition"])
	}
	if hue != nil {
		t.Fatalf("expected no hue payload for a plain update, got %v", hue)
	}
}

func TestTranslateLightSetUsesDynamicsDuration(t *testing.T) {
	u := LightUpdate{On: &model.OnState{On: true}, Dynamics: &model.Dynamics{Duration: 2000}}

	generic, _ := TranslateLightSet(u)

	if generic["transition"] != 2.0 {
		t.Fatalf("expected transition 2s from dynamics duration, got %v", generic["transition"])
	}
}

func TestTranslateLightSetIncludesHuePayloadForEffects(t *testing.T) {
	u := LightUpdate{Effects: &model.Effects{Effect: "candle"}}

	_, hue := TranslateLightSet(u)

	if hue == nil {
		t.Fatal("expected a hue-proprietary payload when effects are set")
	}
	if hue["fade_speed"] != 1 {
		t.Fatalf("expected fade_speed=1, got %v", hue["fade_speed"])
	}
	if hue["effect"] != "candle" {
		t.Fatalf("expected effect=candle, got %v", hue["effect"])
	}
}

func TestDiffRoomMembersAddedAndRemoved(t *testing.T) {
	added, removed := DiffRoomMembers([]string{"a", "b"}, []string{"b", "c"})

	if len(added) != 1 || added[0] != "c" {
		t.Fatalf("expected added=[c], got %v", added)
	}
	if len(removed) != 1 || removed[0] != "a" {
		t.Fatalf("expected removed=[a], got %v", removed)
	}
}

func TestResolveSegmentAddresses(t *testing.T) {
	channels := []model.Channel{
		{ChannelID: 0, Members: []model.ChannelMember{{Index: 1}}},
	}

	out := ResolveSegmentAddresses(channels,
		func(service interface{ IsZero() bool }) (string, bool) { return "lamp-1", true },
		func(name string) (DeviceInfo, bool) { return DeviceInfo{NetworkAddress: 100}, true },
	)

	if len(out) != 1 || out[0].Address != 101 {
		t.Fatalf("expected one segment at address 101, got %+v", out)
	}
}
