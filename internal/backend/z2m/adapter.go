package z2m

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
	"github.com/eriknyberg/huebridge/internal/requestbus"
	"github.com/eriknyberg/huebridge/internal/store"
)

// permitJoinDuration is how long ZigbeeDeviceDiscovery requests open
// joining for (spec.md §4.5: "permit_join(4 minutes)").
const permitJoinDuration = 4 * time.Minute

// Adapter is the Zigbee2MQTT backend: same start/run/stop lifecycle as
// every other backend adapter (spec.md §4.4).
type Adapter struct {
	client *Client
	store  *store.Store
	sub    *requestbus.Subscription
	fps    int

	mu      sync.Mutex
	rmap    map[identity.Link]string  // resource link -> friendly-name topic
	network map[string]DeviceInfo     // friendly name -> device info
	streams map[identity.Link]*Stream // entertainment config link -> open stream

	stop chan struct{}
	done chan struct{}
}

// NewAdapter builds an Adapter around an already-dialed Client.
func NewAdapter(client *Client, st *store.Store, bus *requestbus.Bus, fps int) *Adapter {
	return &Adapter{
		client:  client,
		store:   st,
		sub:     bus.Subscribe(),
		fps:     fps,
		rmap:    make(map[identity.Link]string),
		network: make(map[string]DeviceInfo),
		streams: make(map[identity.Link]*Stream),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the run loop.
func (a *Adapter) Start(ctx context.Context) {
	go a.run(ctx)
}

// Stop requests cooperative shutdown and waits for run to exit.
func (a *Adapter) Stop() {
	close(a.stop)
	<-a.done
	a.sub.Unsubscribe()
	if a.client != nil {
		a.client.Close()
	}
}

// run interleaves request-bus handling with inbound z2m websocket
// messages. Per spec.md §4.5, any protocol error terminates the run; the
// caller (service manager) is responsible for restarting the adapter.
func (a *Adapter) run(ctx context.Context) {
	defer close(a.done)

	inbound := make(chan Message)
	errCh := make(chan error, 1)
	go func() {
		for {
			msg, err := a.client.Next()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case inbound <- msg:
			case <-a.stop:
				return
			}
		}
	}()

	for {
		select {
		case <-a.stop:
			return

		case msg := <-inbound:
			a.handleInbound(msg)

		case err := <-errCh:
			log.Error().Err(err).Msg("zigbee2mqtt websocket failed, adapter stopping")
			return

		case req := <-a.sub.C():
			a.handleRequest(ctx, req)
		}
	}
}

func (a *Adapter) handleInbound(msg Message) {
	switch {
	case msg.Topic == "bridge/devices":
		devices, err := ParseBridgeDevices(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Msg("zigbee2mqtt bridge/devices decode failed, skipping")
			return
		}
		a.mu.Lock()
		for name, info := range devices {
			a.network[name] = info
		}
		a.mu.Unlock()

	case msg.Topic == "bridge/event":
		ev, err := ParseBridgeEvent(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Msg("zigbee2mqtt bridge/event decode failed, skipping")
			return
		}
		a.applyBridgeEvent(ev)

	default:
		if name, ok := friendlyNameFromTopic(msg.Topic); ok {
			a.applyDeviceState(name, msg.Payload)
		}
	}
}

func (a *Adapter) applyBridgeEvent(ev BridgeEvent) {
	status, ok := ZigbeeStatusFor(ev.Type)
	if !ok {
		return
	}
	link, ok := a.linkForFriendlyName(ev.Data.FriendlyName)
	if !ok {
		return
	}
	_ = store.UpdateByType[model.ZigbeeConnectivity](a.store, func(id uuid.UUID, zbc model.ZigbeeConnectivity) model.ZigbeeConnectivity {
		if zbc.Owner == link {
			zbc.Status = status
		}
		return zbc
	})
}

func (a *Adapter) applyDeviceState(friendlyName string, payload []byte) {
	state, err := ParseDeviceState(payload)
	if err != nil {
		log.Warn().Err(err).Str("friendly_name", friendlyName).Msg("zigbee2mqtt device state decode failed, skipping")
		return
	}
	link, ok := a.linkForFriendlyName(friendlyName)
	if !ok || link.Type != identity.KindLight {
		return
	}
	_ = store.Update[model.Light](a.store, link.ID, func(l model.Light) model.Light {
		if state.State != "" {
			l.On = model.OnState{On: state.State == "ON"}
		}
		if state.Brightness != nil {
			if l.Dimming == nil {
				l.Dimming = &model.Dimming{}
			}
			l.Dimming.Brightness = *state.Brightness / 254 * 100
		}
		if state.ColorTemp != nil {
			if l.ColorTemperature == nil {
				l.ColorTemperature = &model.ColorTemperature{MirekSchema: "default", MirekValid: true}
			}
			l.ColorTemperature.Mirek = *state.ColorTemp
		}
		if state.Color != nil {
			l.Color = &model.Color{XY: model.XY{X: state.Color.X, Y: state.Color.Y}}
		}
		return l
	})
}

func (a *Adapter) linkForFriendlyName(name string) (identity.Link, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for link, topic := range a.rmap {
		if topic == name {
			return link, true
		}
	}
	return identity.Link{}, false
}

func (a *Adapter) topicFor(link identity.Link) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	topic, ok := a.rmap[link]
	return topic, ok
}

// handleRequest dispatches one Backend Request Bus message (spec.md
// §4.5's intent translation table). HA-only intents fall through the
// default and are ignored.
func (a *Adapter) handleRequest(ctx context.Context, req requestbus.Request) {
	switch req.Type {
	case requestbus.KindLightUpdate:
		a.handleLightUpdate(req)

	case requestbus.KindGroupedLightUpdate:
		a.handleGroupedLightUpdate(req)

	case requestbus.KindRoomUpdate:
		a.handleRoomUpdate(req)

	case requestbus.KindSceneCreate:
		a.handleSceneCreate(req)

	case requestbus.KindSceneUpdate:
		a.handleSceneUpdate(req)

	case requestbus.KindDelete:
		a.handleDelete(req)

	case requestbus.KindEntertainmentStart:
		a.handleEntertainmentStart(req)

	case requestbus.KindEntertainmentFrame:
		a.handleEntertainmentFrame(ctx, req)

	case requestbus.KindEntertainmentStop:
		a.handleEntertainmentStop(req)

	case requestbus.KindZigbeeDeviceDiscovery:
		a.handlePermitJoin()

	default:
		// SensorEnabledUpdate, Hass*: not meaningful against z2m, ignored.
	}
}

func (a *Adapter) handleLightUpdate(req requestbus.Request) {
	u, ok := req.Update.(LightUpdate)
	if !ok {
		return
	}
	topic, ok := a.topicFor(req.Link)
	if !ok {
		return
	}
	generic, hue := TranslateLightSet(u)
	if err := a.client.Send(topic+"/set", generic); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("zigbee2mqtt light set failed")
		return
	}
	if hue != nil {
		if err := a.client.Send(topic+"/set", hue); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("zigbee2mqtt hue effect payload failed")
		}
	}
	if u.Identify {
		a.identify(topic)
	}
}

// identify fires the breathe effect and schedules its cancellation after
// LightBreatheDuration (spec.md §4.5).
func (a *Adapter) identify(topic string) {
	if err := a.client.Send(topic+"/set", IdentifyPayload); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("zigbee2mqtt identify effect failed")
		return
	}
	time.AfterFunc(time.Duration(LightBreatheDuration)*time.Millisecond, func() {
		if err := a.client.Send(topic+"/set", FinishEffectPayload); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("zigbee2mqtt identify finish failed")
		}
	})
}

func (a *Adapter) handleGroupedLightUpdate(req requestbus.Request) {
	u, ok := req.Update.(LightUpdate)
	if !ok {
		return
	}
	topic, ok := a.topicFor(req.Link)
	if !ok {
		return
	}
	generic, _ := TranslateLightSet(u)
	if err := a.client.Send(topic+"/set", generic); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("zigbee2mqtt group set failed")
	}
}

func (a *Adapter) handleRoomUpdate(req requestbus.Request) {
	room, err := store.GetID[model.Room](a.store, req.Link.ID)
	if err != nil {
		return
	}
	roomTopic, ok := a.topicFor(req.Link)
	if !ok {
		return
	}

	var current []string
	for _, child := range room.Children {
		if name, ok := a.topicFor(child); ok {
			current = append(current, name)
		}
	}

	previous, _ := req.Update.([]string)
	added, removed := DiffRoomMembers(previous, current)

	for _, name := range added {
		if err := a.client.Send("bridge/request/group/members/add", map[string]any{"group": roomTopic, "device": name}); err != nil {
			log.Warn().Err(err).Msg("zigbee2mqtt group member add failed")
		}
	}
	for _, name := range removed {
		if err := a.client.Send("bridge/request/group/members/remove", map[string]any{"group": roomTopic, "device": name}); err != nil {
			log.Warn().Err(err).Msg("zigbee2mqtt group member remove failed")
		}
	}
}

func (a *Adapter) handleSceneCreate(req requestbus.Request) {
	scene, ok := req.Scene.(model.Scene)
	if !ok {
		return
	}
	topic, ok := a.topicFor(scene.Group)
	if !ok {
		return
	}
	if err := a.client.Send("bridge/request/scene/store", map[string]any{
		"id": topic, "name": scene.Metadata.Name, "sceneid": req.SceneIndex,
	}); err != nil {
		log.Warn().Err(err).Msg("zigbee2mqtt scene store failed")
		return
	}
	topicCopy := topic
	index := req.SceneIndex
	a.store.AuxSet(req.Link.ID, store.AuxData{Topic: &topicCopy, Index: &index})
}

func (a *Adapter) handleSceneUpdate(req requestbus.Request) {
	recall, _ := req.Update.(model.Recall)
	scene, err := store.GetID[model.Scene](a.store, req.Link.ID)
	if err != nil {
		return
	}
	topic, ok := a.topicFor(scene.Group)
	if !ok {
		return
	}
	aux := a.store.AuxGet(req.Link.ID)
	var index uint32
	if aux.Index != nil {
		index = *aux.Index
	}

	if recall.Action == model.RecallActive {
		a.store.RecallScene(scene.Group, req.Link)
		if err := a.client.Send("bridge/request/scene/recall", map[string]any{"id": topic, "sceneid": index}); err != nil {
			log.Warn().Err(err).Msg("zigbee2mqtt scene recall failed")
		}
		return
	}

	if recall.Action != model.RecallNone {
		log.Warn().Str("action", string(recall.Action)).Msg("zigbee2mqtt scene recall type not supported")
		return
	}

	if err := a.client.Send("bridge/request/scene/store", map[string]any{
		"id": topic, "name": scene.Metadata.Name, "sceneid": index,
	}); err != nil {
		log.Warn().Err(err).Msg("zigbee2mqtt scene metadata store failed")
	}
}

func (a *Adapter) handleDelete(req requestbus.Request) {
	switch req.Link.Type {
	case identity.KindScene:
		scene, err := store.GetID[model.Scene](a.store, req.Link.ID)
		if err != nil {
			return
		}
		topic, ok := a.topicFor(scene.Group)
		if !ok {
			return
		}
		aux := a.store.AuxGet(req.Link.ID)
		var index uint32
		if aux.Index != nil {
			index = *aux.Index
		}
		if err := a.client.Send("bridge/request/scene/remove", map[string]any{"id": topic, "sceneid": index}); err != nil {
			log.Warn().Err(err).Msg("zigbee2mqtt scene remove failed")
		}

	case identity.KindDevice:
		name, ok := a.topicFor(req.Link)
		if !ok {
			return
		}
		a.mu.Lock()
		info, ok := a.network[name]
		a.mu.Unlock()
		if !ok {
			return
		}
		if err := a.client.Send("bridge/request/device/remove", map[string]any{"id": info.IEEEAddress}); err != nil {
			log.Warn().Err(err).Msg("zigbee2mqtt device remove failed")
		}
	}
}

func (a *Adapter) handleEntertainmentStart(req requestbus.Request) {
	cfg, err := store.GetID[model.EntertainmentConfiguration](a.store, req.EntertainmentID.ID)
	if err != nil {
		return
	}
	segments := ResolveSegmentAddresses(cfg.Channels, func(service interface{ IsZero() bool }) (string, bool) {
		link, _ := service.(identity.Link)
		return a.topicFor(link)
	}, func(name string) (DeviceInfo, bool) {
		a.mu.Lock()
		defer a.mu.Unlock()
		info, ok := a.network[name]
		return info, ok
	})
	if len(segments) == 0 {
		return
	}

	stream := NewStream(a.client, "bridge/request/entertainment/"+req.EntertainmentID.ID.String(), a.fps)
	a.mu.Lock()
	a.streams[req.EntertainmentID] = stream
	a.mu.Unlock()
}

func (a *Adapter) handleEntertainmentFrame(ctx context.Context, req requestbus.Request) {
	a.mu.Lock()
	stream, ok := a.streams[req.EntertainmentID]
	a.mu.Unlock()
	if !ok {
		return
	}
	if err := stream.Send(ctx, req.Frame); err != nil {
		log.Warn().Err(err).Msg("zigbee2mqtt entertainment frame send failed")
	}
}

func (a *Adapter) handleEntertainmentStop(req requestbus.Request) {
	a.mu.Lock()
	delete(a.streams, req.EntertainmentID)
	a.mu.Unlock()

	_ = store.Update[model.EntertainmentConfiguration](a.store, req.EntertainmentID.ID, func(cfg model.EntertainmentConfiguration) model.EntertainmentConfiguration {
		cfg.Streaming = false
		return cfg
	})
	for _, ch := range a.entertainmentLightLinks(req.EntertainmentID) {
		_ = store.Update[model.Light](a.store, ch.ID, func(l model.Light) model.Light {
			l.Streaming = false
			return l
		})
	}
}

func (a *Adapter) entertainmentLightLinks(cfgLink identity.Link) []identity.Link {
	cfg, err := store.GetID[model.EntertainmentConfiguration](a.store, cfgLink.ID)
	if err != nil {
		return nil
	}
	var out []identity.Link
	for _, ch := range cfg.Channels {
		for _, m := range ch.Members {
			out = append(out, m.Service)
		}
	}
	return out
}

func (a *Adapter) handlePermitJoin() {
	if err := a.client.Send("bridge/request/permit_join", map[string]any{"time": int(permitJoinDuration.Seconds())}); err != nil {
		log.Warn().Err(err).Msg("zigbee2mqtt permit_join failed")
	}
}
