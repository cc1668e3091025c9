package ha

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/eriknyberg/huebridge/internal/haconfig"
	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
	"github.com/eriknyberg/huebridge/internal/store"
)

// hassManufacturer/hassModelPrefix mark every Device this adapter owns,
// so Prune (step 10) can tell a HA-imported device from one Z2M or the
// bridge core created.
const (
	hassManufacturer = "Home Assistant"
	hassModelPrefix  = "hass-"
)

// Importer runs the full or single-entity HA import pipeline against a
// Store and an haconfig.Store, per spec.md §4.6.
type Importer struct {
	client *Client
	store  *store.Store
	ui     *haconfig.Store
}

// NewImporter wires an Importer.
func NewImporter(client *Client, st *store.Store, ui *haconfig.Store) *Importer {
	return &Importer{client: client, store: st, ui: ui}
}

// FullSync runs steps 1-12 of the import pipeline.
func (im *Importer) FullSync(ctx context.Context) error {
	states, err := im.client.States(ctx)
	if err != nil {
		return err
	}

	cfg, err := im.client.SystemConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("home assistant system config fetch failed, continuing without it")
	} else {
		im.ui.Config.HassTimezone = cfg.TimeZone
		im.ui.Config.HassLat = cfg.Latitude
		im.ui.Config.HassLong = cfg.Longitude
	}

	areas := im.client.EntityAreas(ctx)

	keep := make(map[identity.Link]bool)
	roomMembers := make(map[string][]identity.Link)

	for _, s := range states {
		area := areas[s.EntityID]
		entity, ok := ParseEntity(s, area)
		if !ok {
			continue
		}
		im.applyPreferences(&entity)

		included := im.ui.Config.ShouldInclude(entity.EntityID, entity.EntityID, entity.Available, string(entity.SensorKind))
		if entity.Domain == "binary_sensor" && entity.SensorKind == SensorKindIgnore {
			included = false
		}

		if !included {
			continue
		}

		roomID := im.assignedRoom(entity)
		link := im.upsertEntity(entity, roomID)
		keep[link] = true
		roomMembers[roomID] = append(roomMembers[roomID], link)
	}

	im.syncRooms(roomMembers)
	im.pruneDevices(keep)
	im.recomputeGroupedLights(roomMembers)

	return nil
}

// applyPreferences overlays the UI's per-entity overrides (step 5). Only
// the sensor-kind override is applied; alias, switch-mode, light
// archetype and sensor-enabled preferences are not read here.
func (im *Importer) applyPreferences(e *ImportedEntity) {
	pref, ok := im.ui.Config.EntityPreferences[e.EntityID]
	if !ok {
		return
	}
	if pref.SensorKind != "" {
		e.SensorKind = SensorKind(pref.SensorKind)
	}
}

// assignedRoom resolves step 6's room precedence: explicit user
// preference, then area mapping if sync-areas is enabled, else the
// default room.
func (im *Importer) assignedRoom(e ImportedEntity) string {
	if pref, ok := im.ui.Config.EntityPreferences[e.EntityID]; ok && pref.RoomID != "" {
		return pref.RoomID
	}
	if im.ui.Config.SyncHassAreasToRooms && e.Area != "" {
		return im.ui.Config.EnsureRoomForArea(e.Area)
	}
	return haconfig.HomeAssistantRoomID
}

// upsertEntity is step 9: ensure Device + ZigbeeConnectivity + typed
// service, updating in place if already present.
func (im *Importer) upsertEntity(e ImportedEntity, roomID string) identity.Link {
	devLink := deviceLink(e.EntityID)
	zbcLink := zigbeeConnectivityLink(e.EntityID)

	var serviceLink identity.Link
	switch e.ServiceKind {
	case ServiceKindLight:
		serviceLink = lightLink(e.EntityID)
		im.store.Add(serviceLink, model.Light{Owner: devLink, Metadata: model.Metadata{Name: e.EntityID}})
		_ = store.Update[model.Light](im.store, serviceLink.ID, func(l model.Light) model.Light {
			return ProjectLight(l, e)
		})
	case ServiceKindMotion:
		serviceLink = motionLink(e.EntityID)
		im.store.Add(serviceLink, model.Motion{Owner: devLink, Enabled: true, Motion: model.Raw{"motion": e.On, "motion_valid": true}})
		_ = store.Update[model.Motion](im.store, serviceLink.ID, func(m model.Motion) model.Motion {
			m.Motion = model.Raw{"motion": e.On, "motion_valid": true}
			return m
		})
	case ServiceKindContact:
		serviceLink = contactLink(e.EntityID)
		im.store.Add(serviceLink, model.Contact{Owner: devLink, Enabled: true, State: model.Raw{"contact_report_state": contactState(e.On)}})
		_ = store.Update[model.Contact](im.store, serviceLink.ID, func(c model.Contact) model.Contact {
			c.State = model.Raw{"contact_report_state": contactState(e.On)}
			return c
		})
	}

	im.store.Add(zbcLink, model.ZigbeeConnectivity{Owner: devLink, Status: "connected", MACAddress: eui64ForDevice(devLink)})

	im.store.Add(devLink, model.Device{
		Metadata:    model.Metadata{Name: e.EntityID},
		ProductData: model.ProductData{ManufacturerName: hassManufacturer, ModelID: hassModelPrefix + e.Domain},
		Services:    []identity.Link{serviceLink, zbcLink},
	})

	return devLink
}

func contactState(on bool) string {
	if on {
		return "contact"
	}
	return "no_contact"
}

// syncRooms is step 8: every configured room gets a Room+GroupedLight in
// the store; rooms no longer configured are removed.
func (im *Importer) syncRooms(roomMembers map[string][]identity.Link) {
	configured := make(map[identity.Link]bool, len(im.ui.Config.Rooms))
	for _, r := range im.ui.Config.Rooms {
		link := roomLink(r.ID)
		configured[link] = true

		gl := groupedLightLink(r.ID)
		im.store.Add(gl, model.GroupedLight{Owner: link})
		im.store.Add(link, model.Room{
			Metadata: model.Metadata{Name: r.Name},
			Children: roomMembers[r.ID],
			Services: []identity.Link{gl},
		})
		_ = store.Update[model.Room](im.store, link.ID, func(room model.Room) model.Room {
			room.Children = roomMembers[r.ID]
			return room
		})
	}

	for _, id := range store.ResourcesByType[model.Room](im.store) {
		link := identity.NewLink(id, identity.KindRoom)
		if !configured[link] {
			im.store.Delete(link)
		}
	}
}

// pruneDevices is step 10: delete every HA-owned Device not in keep.
func (im *Importer) pruneDevices(keep map[identity.Link]bool) {
	for _, id := range store.ResourcesByType[model.Device](im.store) {
		dev, err := store.GetID[model.Device](im.store, id)
		if err != nil {
			continue
		}
		if dev.ProductData.ManufacturerName != hassManufacturer {
			continue
		}
		link := identity.NewLink(id, identity.KindDevice)
		if !keep[link] {
			im.store.Delete(link)
		}
	}
}

// recomputeGroupedLights is step 12.
func (im *Importer) recomputeGroupedLights(roomMembers map[string][]identity.Link) {
	for roomID := range roomMembers {
		gl := groupedLightLink(roomID)

		var anyOn bool
		var brightnessSum float64
		var brightnessCount int

		for _, devLink := range roomMembers[roomID] {
			dev, err := store.GetID[model.Device](im.store, devLink.ID)
			if err != nil {
				continue
			}
			for _, svc := range dev.Services {
				if svc.Type != identity.KindLight {
					continue
				}
				light, err := store.GetID[model.Light](im.store, svc.ID)
				if err != nil {
					continue
				}
				if light.On.On {
					anyOn = true
				}
				if light.Dimming != nil {
					brightnessSum += light.Dimming.Brightness
					brightnessCount++
				}
			}
		}

		_ = store.Update[model.GroupedLight](im.store, gl.ID, func(g model.GroupedLight) model.GroupedLight {
			g.On = model.OnState{On: anyOn}
			if brightnessCount > 0 {
				g.Dimming = &model.Dimming{Brightness: brightnessSum / float64(brightnessCount)}
			} else {
				g.Dimming = nil
			}
			return g
		})
	}
}

// UpsertSingleEntity is the single-entity restricted pipeline (spec.md
// §4.6: "same pipeline restricted to one entity, skipping steps 7, 10,
// 12").
func (im *Importer) UpsertSingleEntity(ctx context.Context, entityID string) error {
	states, err := im.client.States(ctx)
	if err != nil {
		return err
	}
	for _, s := range states {
		if s.EntityID != entityID {
			continue
		}
		area := im.client.EntityAreas(ctx)[entityID]
		entity, ok := ParseEntity(s, area)
		if !ok {
			return nil
		}
		im.applyPreferences(&entity)
		roomID := im.assignedRoom(entity)
		im.upsertEntity(entity, roomID)
		return nil
	}
	return nil
}

// RemoveEntity deletes the deterministic device link for entityID.
func (im *Importer) RemoveEntity(entityID string) {
	im.store.Delete(deviceLink(entityID))
}
