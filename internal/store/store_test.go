package store

import (
	"testing"

	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
)

func TestAddIsIdempotent(t *testing.T) {
	s := New()
	link := identity.Deterministic(identity.KindLight, "foo")

	s.Add(link, model.Light{Metadata: model.Metadata{Name: "Lamp"}})
	s.Add(link, model.Light{Metadata: model.Metadata{Name: "Different Name"}})

	got, err := Get[model.Light](s, link)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Metadata.Name != "Lamp" {
		t.Errorf("second Add overwrote first: got name %q", got.Metadata.Name)
	}
}

func TestGetTypeMismatch(t *testing.T) {
	s := New()
	link := identity.Deterministic(identity.KindLight, "foo")
	s.Add(link, model.Light{})

	if _, err := Get[model.Room](s, link); err == nil {
		t.Fatal("expected type mismatch error, got nil")
	}
}

func TestUpdateZeroDiffEmitsNoEvent(t *testing.T) {
	s := New()
	link := identity.Deterministic(identity.KindLight, "foo")
	s.Add(link, model.Light{On: model.OnState{On: false}})

	events, _ := s.Subscribe(0)
	baseline := len(events)

	if err := Update[model.Light](s, link.ID, func(l model.Light) model.Light { return l }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	events, _ = s.Subscribe(0)
	if len(events) != baseline {
		t.Errorf("no-op update emitted an event: before=%d after=%d", baseline, len(events))
	}
}

func TestUpdateEmitsMinimalDiff(t *testing.T) {
	s := New()
	link := identity.Deterministic(identity.KindLight, "foo")
	s.Add(link, model.Light{On: model.OnState{On: false}, Metadata: model.Metadata{Name: "Lamp"}})

	if err := Update[model.Light](s, link.ID, func(l model.Light) model.Light {
		l.On.On = true
		return l
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	events, _ := s.Subscribe(0)
	last := events[len(events)-1]
	if last.Type != EventUpdate {
		t.Fatalf("last event type = %s, want update", last.Type)
	}

	payload, ok := last.Data[0].(map[string]any)
	if !ok {
		t.Fatalf("payload not a map: %#v", last.Data[0])
	}
	if _, hasMetadata := payload["metadata"]; hasMetadata {
		t.Errorf("diff leaked unchanged field metadata: %#v", payload)
	}
	onField, ok := payload["on"].(map[string]any)
	if !ok {
		t.Fatalf("diff missing changed field on: %#v", payload)
	}
	if onField["on"] != true {
		t.Errorf("diff.on.on = %v, want true", onField["on"])
	}
}

func TestDeleteCascadesToOwnedChildren(t *testing.T) {
	s := New()
	device := identity.Deterministic(identity.KindDevice, "dev")
	light := identity.Deterministic(identity.KindLight, "light")

	s.Add(light, model.Light{Owner: device})
	s.Add(device, model.Device{Services: []identity.Link{light}})

	s.Delete(device)

	if s.Exists(light.ID) {
		t.Error("Light survived deletion of its owning Device")
	}
	if s.Exists(device.ID) {
		t.Error("Device survived its own deletion")
	}
}

func TestDeletePurgesReferences(t *testing.T) {
	s := New()
	device := identity.Deterministic(identity.KindDevice, "dev")
	room := identity.Deterministic(identity.KindRoom, "room")

	s.Add(device, model.Device{})
	s.Add(room, model.Room{Children: []identity.Link{device}})

	s.Delete(device)

	r, err := Get[model.Room](s, room)
	if err != nil {
		t.Fatalf("Get room: %v", err)
	}
	for _, c := range r.Children {
		if c == device {
			t.Error("Room still references deleted Device")
		}
	}
}

func TestNextSceneIDSmallestFree(t *testing.T) {
	s := New()
	room := identity.Deterministic(identity.KindRoom, "room")

	scene0 := identity.Deterministic(identity.KindScene, "s0")
	s.Add(scene0, model.Scene{Group: room})
	idx0 := uint32(0)
	s.AuxSet(scene0.ID, AuxData{Index: &idx0})

	next, err := s.NextSceneID(room)
	if err != nil {
		t.Fatalf("NextSceneID: %v", err)
	}
	if next != 1 {
		t.Errorf("NextSceneID = %d, want 1", next)
	}
}

func TestNextSceneIDFullAt100(t *testing.T) {
	s := New()
	room := identity.Deterministic(identity.KindRoom, "room")

	for i := uint32(0); i < maxScenesPerRoom; i++ {
		link := identity.Deterministic(identity.KindScene, "scene-"+string(rune('a'+i%26))+string(rune('A'+i/26)))
		s.Add(link, model.Scene{Group: room})
		idx := i
		s.AuxSet(link.ID, AuxData{Index: &idx})
	}

	if _, err := s.NextSceneID(room); err == nil {
		t.Fatal("expected Full error once every slot is taken")
	}
}

func TestIDv1Mapping(t *testing.T) {
	s := New()
	light := identity.Deterministic(identity.KindLight, "foo")
	s.Add(light, model.Light{})

	path, ok := s.IDv1(light.ID)
	if !ok || path != "/lights/0" {
		t.Fatalf("IDv1 = %q, %v, want /lights/0, true", path, ok)
	}

	back, ok := s.ByIDv1("/lights/0")
	if !ok || back != light.ID {
		t.Fatalf("ByIDv1 = %v, %v, want %v, true", back, ok, light.ID)
	}
}

func TestIDv1BridgeHomeFixedToGroupZero(t *testing.T) {
	s := New()
	home := identity.Deterministic(identity.KindBridgeHome, "B0:00:00:FF:FE:00:00:00HOME")
	s.Add(home, model.BridgeHome{})

	path, ok := s.IDv1(home.ID)
	if !ok || path != "/groups/0" {
		t.Fatalf("IDv1(BridgeHome) = %q, %v, want /groups/0, true", path, ok)
	}
}

func TestEventRingReplayAfterWraparound(t *testing.T) {
	s := New()
	link := identity.Deterministic(identity.KindLight, "foo")
	s.Add(link, model.Light{})

	for i := 0; i < ringSize+10; i++ {
		_ = Update[model.Light](s, link.ID, func(l model.Light) model.Light {
			l.Dimming = &model.Dimming{Brightness: float64(i)}
			return l
		})
	}

	events, _ := s.Subscribe(0)
	if len(events) != ringSize {
		t.Fatalf("replay from 0 after wraparound = %d events, want %d", len(events), ringSize)
	}
}

func TestRecallSceneDeactivatesSiblings(t *testing.T) {
	s := New()
	room := identity.Deterministic(identity.KindRoom, "room")
	a := identity.Deterministic(identity.KindScene, "a")
	b := identity.Deterministic(identity.KindScene, "b")

	s.Add(a, model.Scene{Group: room, Status: model.SceneStatusInactive})
	s.Add(b, model.Scene{Group: room, Status: model.SceneStatusActive})

	_, ch := s.Subscribe(0)

	s.RecallScene(room, a)

	gotA, err := Get[model.Scene](s, a)
	if err != nil {
		t.Fatalf("Get a: %v", err)
	}
	if gotA.Status != model.SceneStatusStatic {
		t.Errorf("recalled scene status = %s, want static", gotA.Status)
	}

	gotB, err := Get[model.Scene](s, b)
	if err != nil {
		t.Fatalf("Get b: %v", err)
	}
	if gotB.Status != model.SceneStatusInactive {
		t.Errorf("sibling scene status = %s, want inactive", gotB.Status)
	}

	last, ok := s.LastRecalledScene(room)
	if !ok || last != a {
		t.Fatalf("LastRecalledScene = %v, %v, want %v, true", last, ok, a)
	}

	select {
	case <-ch:
	default:
		t.Fatal("RecallScene must wake subscribers: both status flips are events on the bus")
	}
}

func TestResetAllStreamingClearsFlags(t *testing.T) {
	s := New()
	link := identity.Deterministic(identity.KindLight, "foo")
	s.Add(link, model.Light{Streaming: true})

	s.ResetAllStreaming()

	got, err := Get[model.Light](s, link)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Streaming {
		t.Error("ResetAllStreaming left Streaming set")
	}
}
