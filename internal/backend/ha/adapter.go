package ha

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eriknyberg/huebridge/internal/haconfig"
	"github.com/eriknyberg/huebridge/internal/harun"
	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
	"github.com/eriknyberg/huebridge/internal/requestbus"
	"github.com/eriknyberg/huebridge/internal/store"
)

// pollInterval is the full-resync cadence (spec.md §4.6's "Event-loop
// cadence": a 10 second ticker drives periodic resync alongside the
// realtime subscription and the request bus).
const pollInterval = 10 * time.Second

// Adapter is the Home Assistant backend: every adapter implements the
// same start/run/stop lifecycle (spec.md §4.4) so the app layer can treat
// HA and Z2M identically.
type Adapter struct {
	client   *Client
	store    *store.Store
	ui       *haconfig.Store
	sub      *requestbus.Subscription
	runCfg   harun.Config
	realtime *Realtime

	stop chan struct{}
	done chan struct{}
}

// NewAdapter builds an Adapter. Connect performs the REST client and
// websocket setup; NewAdapter alone does no I/O.
func NewAdapter(st *store.Store, ui *haconfig.Store, bus *requestbus.Bus) *Adapter {
	return &Adapter{
		store: st,
		ui:    ui,
		sub:   bus.Subscribe(),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Connect establishes the REST client and realtime websocket subscription
// against cfg. Must be called before Start.
func (a *Adapter) Connect(ctx context.Context, cfg harun.Config, tokenEnvFallback string) error {
	client, err := NewClient(cfg, tokenEnvFallback)
	if err != nil {
		return err
	}
	realtime, err := DialRealtime(ctx, cfg)
	if err != nil {
		return err
	}
	a.client = client
	a.realtime = realtime
	a.runCfg = cfg
	return nil
}

// Start launches the adapter's run loop in a new goroutine. Stop signals
// cooperative shutdown; Start's goroutine closes done when it returns.
func (a *Adapter) Start(ctx context.Context) {
	go a.run(ctx)
}

// Stop requests cooperative shutdown and blocks until run has returned.
func (a *Adapter) Stop() {
	close(a.stop)
	<-a.done
	a.sub.Unsubscribe()
	if a.realtime != nil {
		a.realtime.Close()
	}
}

// run is the event loop: a 10 second ticker drives full resync, the
// request bus carries Hue-side intents to translate into HA service
// calls, and a dedicated goroutine feeds realtime state_changed events
// onto a channel this loop can select over.
func (a *Adapter) run(ctx context.Context) {
	defer close(a.done)

	importer := NewImporter(a.client, a.store, a.ui)

	events := make(chan StateChangedEvent)
	errCh := make(chan error, 1)
	go func() {
		for {
			ev, err := a.realtime.Next()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case events <- ev:
			case <-a.stop:
				return
			}
		}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	if err := importer.FullSync(ctx); err != nil {
		log.Error().Err(err).Msg("home assistant initial sync failed")
	}

	for {
		select {
		case <-a.stop:
			return

		case <-ticker.C:
			if err := importer.FullSync(ctx); err != nil {
				log.Error().Err(err).Msg("home assistant periodic resync failed")
			}

		case ev := <-events:
			a.applyRealtimeEvent(importer, ev)

		case err := <-errCh:
			log.Error().Err(err).Msg("home assistant realtime subscription failed, adapter stopping")
			return

		case req := <-a.sub.C():
			a.handleRequest(ctx, req)
		}
	}
}

// applyRealtimeEvent mirrors one state_changed event into the store
// without running the full pipeline (spec.md §4.6: realtime updates only
// touch the single affected entity's projection).
func (a *Adapter) applyRealtimeEvent(importer *Importer, ev StateChangedEvent) {
	if ev.Data.NewState == nil {
		return
	}
	area := ""
	entity, ok := ParseEntity(*ev.Data.NewState, area)
	if !ok {
		return
	}
	if !a.ui.Config.ShouldInclude(entity.EntityID, entity.EntityID, entity.Available, string(entity.SensorKind)) {
		return
	}
	importer.applyPreferences(&entity)
	if entity.ServiceKind == ServiceKindLight {
		if prior, err := store.GetID[model.Light](a.store, lightLink(entity.EntityID).ID); err == nil {
			entity.Capabilities = MergeRealtimeCapabilities(Capabilities{
				Brightness: prior.Dimming != nil,
				Color:      prior.Color != nil,
				ColorTemp:  prior.ColorTemperature != nil,
			}, entity.Capabilities)
		}
	}
	roomID := importer.assignedRoom(entity)
	importer.upsertEntity(entity, roomID)
}

// handleRequest translates one Backend Request Bus message into HA REST
// calls. Entertainment and Zigbee-only request kinds are unsupported on
// this backend and are silently ignored per spec.md §4.6.
func (a *Adapter) handleRequest(ctx context.Context, req requestbus.Request) {
	switch req.Type {
	case requestbus.KindLightUpdate:
		a.handleLightUpdate(ctx, req)

	case requestbus.KindSensorEnabledUpdate:
		if err := a.realtime.EntityRegistryDisable(req.EntityID, !req.Enabled); err != nil {
			log.Warn().Err(err).Str("entity_id", req.EntityID).Msg("home assistant sensor enable toggle failed")
		}

	case requestbus.KindHassSync:
		importer := NewImporter(a.client, a.store, a.ui)
		if err := importer.FullSync(ctx); err != nil {
			log.Error().Err(err).Msg("home assistant manual sync failed")
		}

	case requestbus.KindHassUpsertEntity:
		importer := NewImporter(a.client, a.store, a.ui)
		if err := importer.UpsertSingleEntity(ctx, req.EntityID); err != nil {
			log.Warn().Err(err).Str("entity_id", req.EntityID).Msg("home assistant entity upsert failed")
		}

	case requestbus.KindHassRemoveEntity:
		NewImporter(a.client, a.store, a.ui).RemoveEntity(req.EntityID)

	case requestbus.KindGroupedLightUpdate:
		a.handleGroupedLightUpdate(ctx, req)

	case requestbus.KindSceneCreate:
		a.handleSceneCreate(ctx, req)

	case requestbus.KindSceneUpdate:
		a.handleSceneUpdate(ctx, req)

	default:
		// RoomUpdate, Delete, Entertainment*, ZigbeeDeviceDiscovery,
		// HassUpdateRooms, HassConnect/Disconnect: not meaningful against
		// a Home Assistant backend, ignored (spec.md §4.6).
	}
}

func (a *Adapter) handleLightUpdate(ctx context.Context, req requestbus.Request) {
	u, ok := req.Update.(LightUpdate)
	if !ok {
		return
	}
	entityID, isSwitch, ok := a.entityIDForLink(req.Link)
	if !ok {
		return
	}
	call := TranslateLightUpdate(entityID, isSwitch, u)
	if err := a.client.CallService(ctx, call.Domain, call.Service, call.Data); err != nil {
		log.Warn().Err(err).Str("entity_id", entityID).Msg("home assistant service call failed")
	}
}

// handleGroupedLightUpdate implements spec.md §4.6's GroupedLightUpdate:
// look up the room owning the grouped light, then apply the same
// light-update to every child device's Light or Switch service.
func (a *Adapter) handleGroupedLightUpdate(ctx context.Context, req requestbus.Request) {
	u, ok := req.Update.(LightUpdate)
	if !ok {
		return
	}
	grouped, err := store.GetID[model.GroupedLight](a.store, req.Link.ID)
	if err != nil {
		return
	}
	room, err := store.GetID[model.Room](a.store, grouped.Owner.ID)
	if err != nil {
		return
	}
	for _, link := range a.roomLightLinks(room) {
		entityID, isSwitch, ok := a.entityIDForLink(link)
		if !ok {
			continue
		}
		call := TranslateLightUpdate(entityID, isSwitch, u)
		if err := a.client.CallService(ctx, call.Domain, call.Service, call.Data); err != nil {
			log.Warn().Err(err).Str("entity_id", entityID).Msg("home assistant grouped light update failed")
		}
	}
}

// roomLightLinks returns the Light-service link of every Device child of
// room (spec.md §4.6: "the room's child devices").
func (a *Adapter) roomLightLinks(room model.Room) []identity.Link {
	var out []identity.Link
	for _, childLink := range room.Children {
		if childLink.Type != identity.KindDevice {
			continue
		}
		dev, err := store.GetID[model.Device](a.store, childLink.ID)
		if err != nil {
			continue
		}
		for _, svc := range dev.Services {
			if svc.Type == identity.KindLight {
				out = append(out, svc)
			}
		}
	}
	return out
}

// handleSceneCreate implements spec.md §4.6's SceneCreate: snapshot the
// room's current light/switch entities via scene.create, naming the
// scene_id with SceneName, and remember the resulting HA scene entity id
// in AuxData so a later SceneUpdate can recall it directly.
func (a *Adapter) handleSceneCreate(ctx context.Context, req requestbus.Request) {
	scene, ok := req.Scene.(model.Scene)
	if !ok {
		return
	}
	room, err := store.GetID[model.Room](a.store, scene.Group.ID)
	if err != nil {
		return
	}

	var entityIDs []string
	for _, link := range a.roomLightLinks(room) {
		if entityID, _, ok := a.entityIDForLink(link); ok {
			entityIDs = append(entityIDs, entityID)
		}
	}
	if len(entityIDs) == 0 {
		log.Warn().Str("room", scene.Group.ID.String()).Msg("home assistant scene create skipped: empty room snapshot")
		return
	}

	sceneIDHex := strings.ReplaceAll(req.Link.ID.String(), "-", "")
	sceneID := SceneName(sceneIDHex)
	data := map[string]any{"scene_id": sceneID, "snapshot_entities": entityIDs}
	if err := a.client.CallService(ctx, "scene", "create", data); err != nil {
		log.Warn().Err(err).Str("scene_id", sceneID).Msg("home assistant scene create failed")
		return
	}

	haEntityID := "scene." + sceneID
	aux := a.store.AuxGet(req.Link.ID)
	aux.Topic = &haEntityID
	a.store.AuxSet(req.Link.ID, aux)
}

// handleSceneUpdate implements spec.md §4.6's SceneUpdate: recall.action
// ∈ {Active,Static} prefers a previously recorded HA scene (scene.turn_on),
// falling back to a per-light turn-on for every scene action when no HA
// scene was ever created for it.
func (a *Adapter) handleSceneUpdate(ctx context.Context, req requestbus.Request) {
	recall, _ := req.Update.(model.Recall)
	if recall.Action != model.RecallActive && recall.Action != model.RecallStatic {
		return
	}

	if aux := a.store.AuxGet(req.Link.ID); aux.Topic != nil {
		if err := a.client.CallService(ctx, "scene", "turn_on", map[string]any{"entity_id": *aux.Topic}); err != nil {
			log.Warn().Err(err).Str("entity_id", *aux.Topic).Msg("home assistant scene turn_on failed")
		}
		return
	}

	scene, err := store.GetID[model.Scene](a.store, req.Link.ID)
	if err != nil {
		return
	}
	for _, action := range scene.Actions {
		entityID, isSwitch, ok := a.entityIDForLink(action.Target)
		if !ok {
			continue
		}
		u := LightUpdate{
			On:               action.Action.On,
			Dimming:          action.Action.Dimming,
			Color:            action.Action.Color,
			ColorTemperature: action.Action.ColorTemperature,
		}
		call := TranslateLightUpdate(entityID, isSwitch, u)
		if err := a.client.CallService(ctx, call.Domain, call.Service, call.Data); err != nil {
			log.Warn().Err(err).Str("entity_id", entityID).Msg("home assistant scene per-light recall failed")
		}
	}
}

// entityIDForLink recovers the HA entity id a Light service link was
// derived from. Since lightLink/motionLink/contactLink are one-way
// hashes, the adapter keeps no reverse index; instead it relies on the
// resource's Metadata.Name, which upsertEntity always sets to the
// originating entity id. A device whose product data carries the
// hass-switch model prefix is reported back to the command translator
// as a switch rather than a light.
func (a *Adapter) entityIDForLink(link identity.Link) (entityID string, isSwitch bool, ok bool) {
	if link.Type != identity.KindLight {
		return "", false, false
	}
	light, err := store.GetID[model.Light](a.store, link.ID)
	if err != nil {
		return "", false, false
	}
	dev, err := store.GetID[model.Device](a.store, light.Owner.ID)
	if err != nil {
		return light.Metadata.Name, false, light.Metadata.Name != ""
	}
	return light.Metadata.Name, dev.ProductData.ModelID == hassModelPrefix+"switch", light.Metadata.Name != ""
}
