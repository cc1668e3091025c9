// Package requestbus is the Backend Request Bus (spec.md §4.3): a
// broadcast channel of intents produced by the HTTP/UI layer (out of
// scope here) and consumed by whichever backend adapter (HA, Z2M) is
// currently active. Every subscriber gets every message, in production
// order; a subscriber that falls behind is lagged off the bus rather than
// silently skipped, since a dropped light command is worse than a
// restarted adapter.
package requestbus

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/eriknyberg/huebridge/internal/identity"
)

// Capacity is the fixed per-subscriber channel depth (spec.md §5).
const Capacity = 32

// Kind tags the variant carried by a Request.
type Kind int

const (
	KindLightUpdate Kind = iota
	KindSensorEnabledUpdate
	KindGroupedLightUpdate
	KindRoomUpdate
	KindSceneCreate
	KindSceneUpdate
	KindDelete
	KindEntertainmentStart
	KindEntertainmentFrame
	KindEntertainmentStop
	KindZigbeeDeviceDiscovery
	KindHassSync
	KindHassUpsertEntity
	KindHassRemoveEntity
	KindHassUpdateRooms
	KindHassConnect
	KindHassDisconnect
)

// Request is the single sum-type message carried by the bus. Only the
// fields relevant to Type are populated; adapters switch on Type first.
type Request struct {
	Type Kind

	Link   identity.Link // LightUpdate, SensorEnabledUpdate, GroupedLightUpdate, RoomUpdate, SceneCreate, SceneUpdate, Delete, ZigbeeDeviceDiscovery
	Update any           // the partial-update payload for *Update kinds; shape owned by the caller

	SceneIndex uint32 // SceneCreate
	Scene      any    // SceneCreate: the model.Scene being created

	Enabled bool // SensorEnabledUpdate

	EntertainmentID identity.Link // EntertainmentStart, EntertainmentFrame, EntertainmentStop
	Frame           any           // EntertainmentFrame

	EntityID string // HassUpsertEntity, HassRemoveEntity
}

// Bus is a multi-producer/multi-consumer broadcast of Request values.
type Bus struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscription is one consumer's view of the bus: an ordered, capacity-32
// channel plus the means to detach itself.
type Subscription struct {
	bus *Bus
	ch  chan Request
}

// Subscribe registers a new consumer. Call Unsubscribe when the adapter
// stops to release its channel.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{bus: b, ch: make(chan Request, Capacity)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// C returns the channel to range/select over.
func (s *Subscription) C() <-chan Request { return s.ch }

// Unsubscribe detaches s from the bus. Idempotent.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
}

// Publish delivers req to every current subscriber. A subscriber whose
// channel is full is considered lagged: it is dropped from the bus and
// its channel closed, so the adapter's own receive loop observes channel
// closure and can treat that as the fatal error spec.md §4.3 calls for,
// rather than silently losing the message.
func (b *Bus) Publish(req Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- req:
		default:
			log.Error().Int("kind", int(req.Type)).Msg("request bus subscriber lagged, dropping it")
			delete(b.subs, sub)
			close(sub.ch)
		}
	}
}
