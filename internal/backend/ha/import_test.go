package ha

import (
	"testing"

	"github.com/eriknyberg/huebridge/internal/haconfig"
	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
	"github.com/eriknyberg/huebridge/internal/store"
)

func newTestImporter() *Importer {
	ui := &haconfig.Store{Config: haconfig.Default()}
	return NewImporter(nil, store.New(), ui)
}

func TestAssignedRoomPrefersExplicitPreference(t *testing.T) {
	im := newTestImporter()
	im.ui.Config.EntityPreferences = map[string]haconfig.EntityPreference{
		"light.kitchen": {RoomID: "kitchen"},
	}

	got := im.assignedRoom(ImportedEntity{EntityID: "light.kitchen", Area: "Office"})
	if got != "kitchen" {
		t.Fatalf("expected explicit room preference to win, got %q", got)
	}
}

func TestAssignedRoomFallsBackToAreaWhenSyncEnabled(t *testing.T) {
	im := newTestImporter()
	im.ui.Config.SyncHassAreasToRooms = true

	got := im.assignedRoom(ImportedEntity{EntityID: "light.kitchen", Area: "Kitchen"})
	want := im.ui.Config.EnsureRoomForArea("Kitchen")
	if got != want {
		t.Fatalf("expected area-derived room %q, got %q", want, got)
	}
}

func TestAssignedRoomDefaultsToHomeAssistantRoom(t *testing.T) {
	im := newTestImporter()
	im.ui.Config.SyncHassAreasToRooms = false

	got := im.assignedRoom(ImportedEntity{EntityID: "light.kitchen", Area: "Kitchen"})
	if got != haconfig.HomeAssistantRoomID {
		t.Fatalf("expected default room, got %q", got)
	}
}

func TestUpsertEntityCreatesDeviceLightAndZigbeeConnectivity(t *testing.T) {
	im := newTestImporter()
	e := ImportedEntity{
		EntityID:     "light.kitchen",
		Domain:       "light",
		ServiceKind:  ServiceKindLight,
		On:           true,
		Capabilities: Capabilities{Brightness: true},
	}

	devLink := im.upsertEntity(e, haconfig.HomeAssistantRoomID)

	dev, err := store.GetID[model.Device](im.store, devLink.ID)
	if err != nil {
		t.Fatalf("expected device to exist: %v", err)
	}
	if dev.ProductData.ManufacturerName != hassManufacturer {
		t.Fatalf("expected hass manufacturer, got %q", dev.ProductData.ManufacturerName)
	}
	if len(dev.Services) != 2 {
		t.Fatalf("expected 2 services (light + zbc), got %d", len(dev.Services))
	}

	light, err := store.GetID[model.Light](im.store, lightLink(e.EntityID).ID)
	if err != nil {
		t.Fatalf("expected light to exist: %v", err)
	}
	if !light.On.On {
		t.Fatal("expected light On to reflect entity state")
	}
	if light.Owner != devLink {
		t.Fatalf("expected light owner to be the device, got %+v", light.Owner)
	}

	if !im.store.Exists(zigbeeConnectivityLink(e.EntityID).ID) {
		t.Fatal("expected a ZigbeeConnectivity resource to be created")
	}
}

func TestUpsertEntityIsIdempotentOnDevice(t *testing.T) {
	im := newTestImporter()
	e := ImportedEntity{EntityID: "light.kitchen", Domain: "light", ServiceKind: ServiceKindLight}

	first := im.upsertEntity(e, haconfig.HomeAssistantRoomID)
	second := im.upsertEntity(e, haconfig.HomeAssistantRoomID)

	if first != second {
		t.Fatalf("expected deterministic device link across calls, got %+v and %+v", first, second)
	}
}

func TestSyncRoomsRemovesUnconfiguredRooms(t *testing.T) {
	im := newTestImporter()
	im.ui.Config.Rooms = []haconfig.Room{{ID: "kitchen", Name: "Kitchen"}}

	im.syncRooms(map[string][]identity.Link{"kitchen": nil})

	link := roomLink("kitchen")
	if !im.store.Exists(link.ID) {
		t.Fatal("expected configured room to exist")
	}

	im.ui.Config.Rooms = nil
	im.syncRooms(map[string][]identity.Link{})

	if im.store.Exists(link.ID) {
		t.Fatal("expected room no longer configured to be removed")
	}
}

func TestPruneDevicesOnlyRemovesUnkeptHassDevices(t *testing.T) {
	im := newTestImporter()
	keptEntity := ImportedEntity{EntityID: "light.kept", Domain: "light", ServiceKind: ServiceKindLight}
	staleEntity := ImportedEntity{EntityID: "light.stale", Domain: "light", ServiceKind: ServiceKindLight}

	keptLink := im.upsertEntity(keptEntity, haconfig.HomeAssistantRoomID)
	staleLink := im.upsertEntity(staleEntity, haconfig.HomeAssistantRoomID)

	im.pruneDevices(map[identity.Link]bool{keptLink: true})

	if !im.store.Exists(keptLink.ID) {
		t.Fatal("expected kept device to survive prune")
	}
	if im.store.Exists(staleLink.ID) {
		t.Fatal("expected stale device to be pruned")
	}
}

func TestRecomputeGroupedLightsAggregatesOnAndBrightness(t *testing.T) {
	im := newTestImporter()
	im.ui.Config.Rooms = []haconfig.Room{{ID: "kitchen", Name: "Kitchen"}}

	onEntity := ImportedEntity{EntityID: "light.a", Domain: "light", ServiceKind: ServiceKindLight, On: true, Capabilities: Capabilities{Brightness: true}, BrightnessPct: 80}
	offEntity := ImportedEntity{EntityID: "light.b", Domain: "light", ServiceKind: ServiceKindLight, On: false, Capabilities: Capabilities{Brightness: true}, BrightnessPct: 20}

	devA := im.upsertEntity(onEntity, "kitchen")
	devB := im.upsertEntity(offEntity, "kitchen")

	members := map[string][]identity.Link{"kitchen": {devA, devB}}
	im.syncRooms(members)
	im.recomputeGroupedLights(members)

	gl, err := store.GetID[model.GroupedLight](im.store, groupedLightLink("kitchen").ID)
	if err != nil {
		t.Fatalf("expected grouped light to exist: %v", err)
	}
	if !gl.On.On {
		t.Fatal("expected grouped light On when any member is on")
	}
	if gl.Dimming == nil || gl.Dimming.Brightness != 50 {
		t.Fatalf("expected averaged brightness 50, got %+v", gl.Dimming)
	}
}
