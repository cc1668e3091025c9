// Package store is the in-memory, persisted resource store: a typed,
// ID-addressed graph of every Hue resource variant, with referential
// integrity, deterministic identity, dual v1/v2 id spaces, change
// notifications, and a replayable event stream (spec.md §3, §4.1, §4.2).
package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/eriknyberg/huebridge/internal/errs"
	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
)

// AuxData is the sidecar metadata the Hue resource model itself has no
// room for: a resource's legacy v1 numbering and the backend topic or
// friendly-name that produced it.
type AuxData struct {
	Index *uint32
	Topic *string
}

// Store is the single typed map id -> Resource, guarded by one mutex.
// Per spec.md §5, callers (backend adapters in particular) MUST NOT hold
// this lock across external network I/O — take a snapshot, drop the
// lock, do the I/O, then reacquire to commit.
type Store struct {
	mu        sync.RWMutex
	resources map[uuid.UUID]model.Resource
	aux       map[uuid.UUID]AuxData

	v1index   map[string]uuid.UUID // "/lights/3" etc. -> id, for the legacy-index kinds
	v1counter map[string]uint32    // counter namespace ("light", "group") -> next free n

	lastRecalledScene map[uuid.UUID]uuid.UUID // room link id -> last recalled scene id (§C.2 of SPEC_FULL.md)

	ring     *ring
	notifier *notifier
}

// New creates an empty Store. Use EnsureCoreBridgeResources to populate the mandatory
// bridge resources afterwards (or Load to restore persisted state, which
// already contains them).
func New() *Store {
	return &Store{
		resources:         make(map[uuid.UUID]model.Resource),
		aux:               make(map[uuid.UUID]AuxData),
		v1index:           make(map[string]uuid.UUID),
		v1counter:         make(map[string]uint32),
		lastRecalledScene: make(map[uuid.UUID]uuid.UUID),
		ring:              newRing(),
		notifier:          newNotifier(),
	}
}

// Notifier exposes the single-slot persistence wake channel.
func (s *Store) Notifier() *notifier { return s.notifier }

// Subscribe returns every retained event with id > lastEventID plus a
// channel woken whenever a new event is pushed; callers (the SSE layer)
// loop: drain Replay, then block on the wake channel and re-poll.
func (s *Store) Subscribe(lastEventID uint64) ([]Event, <-chan struct{}) {
	s.ring.mu.Lock()
	ch := make(chan struct{}, 1)
	s.ring.waiters = append(s.ring.waiters, ch)
	s.ring.mu.Unlock()
	return s.ring.replay(lastEventID), ch
}

// Add inserts resource at link if absent. Idempotent: re-adding the same
// id is a no-op (no error, no event), which is what makes bootstrap and
// HA/Z2M re-imports safe to re-run.
func (s *Store) Add(link identity.Link, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.resources[link.ID]; exists {
		return
	}

	s.resources[link.ID] = model.Resource{ID: link.ID, Type: link.Type, Body: body}
	s.notifier.Wake()

	idv1, _ := s.idv1Locked(link.ID)
	s.ring.push(EventAdd, addEventPayload(link.ID, idv1, link.Type, body))
}

func addEventPayload(id uuid.UUID, idv1 string, kind identity.Kind, body any) map[string]any {
	out := map[string]any{"id": id.String(), "type": kind.String(), "data": body}
	if idv1 != "" {
		out["id_v1"] = idv1
	}
	return out
}

// Get is a type-checked projection: it fails with ErrNotFound if link.ID
// is absent, and ErrTypeMismatch if the stored variant isn't T.
func Get[T any](s *Store, link identity.Link) (T, error) {
	return GetID[T](s, link.ID)
}

// GetID is Get without a pre-known Kind; the Kind is inferred from T via
// model.KindOf and checked against the resource actually stored.
func GetID[T any](s *Store, id uuid.UUID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	res, ok := s.resources[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", errs.ErrNotFound, id)
	}

	body, ok := res.Body.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %s, not %s", errs.ErrTypeMismatch, id, res.Type, model.KindOf[T]())
	}
	return body, nil
}

// Exists reports whether id is present, regardless of type.
func (s *Store) Exists(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.resources[id]
	return ok
}

// ResourceKind returns the stored Kind for id, if present.
func (s *Store) ResourceKind(id uuid.UUID) (identity.Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[id]
	if !ok {
		return 0, false
	}
	return r.Type, true
}

// Update applies f to the current value of T at id, computes the
// structural diff against the prior value, commits the new value, wakes
// the persister, and — if the diff is non-empty — emits an update event.
// A zero diff emits nothing (fields hidden from JSON, such as Streaming,
// still commit), satisfying the diff-minimality invariant (spec.md §8.6).
func Update[T any](s *Store, id uuid.UUID, f func(T) T) error {
	return TryUpdate[T](s, id, func(v T) (T, error) { return f(v), nil })
}

// TryUpdate is Update for mutators that can themselves fail; on error the
// store is left unchanged.
func TryUpdate[T any](s *Store, id uuid.UUID, f func(T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.resources[id]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, id)
	}
	before, ok := res.Body.(T)
	if !ok {
		return fmt.Errorf("%w: %s is %s, not %s", errs.ErrTypeMismatch, id, res.Type, model.KindOf[T]())
	}

	after, err := f(before)
	if err != nil {
		return err
	}

	d, err := diff(before, after)
	if err != nil {
		return fmt.Errorf("diffing %s: %w", id, err)
	}

	res.Body = after
	s.resources[id] = res
	s.notifier.Wake()

	// Zero-diff updates still commit (internal-only fields like
	// Light.Streaming never appear in the diff, since it's computed over
	// the wire JSON) but emit no event — only a state change visible on
	// the wire is worth announcing.
	if len(d) == 0 {
		return nil
	}

	idv1, _ := s.idv1Locked(id)
	payload := map[string]any{"id": id.String(), "type": res.Type.String()}
	if idv1 != "" {
		payload["id_v1"] = idv1
	}
	for k, v := range d {
		payload[k] = v
	}
	s.ring.push(EventUpdate, payload)
	return nil
}

// UpdateByType applies f to every resource whose current variant is T.
func UpdateByType[T any](s *Store, f func(id uuid.UUID, v T) T) error {
	for _, id := range ResourcesByType[T](s) {
		if err := Update[T](s, id, func(v T) T { return f(id, v) }); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes link from the store. It purges every reference to link
// from every remaining resource (Room/Zone/Device/BridgeHome/
// EntertainmentConfiguration), then recursively deletes every resource
// whose owner was link, then emits a delete event for link itself.
// Cascade correctness (spec.md §8.7): after Delete(L), no resource holds
// a reference to L and nothing whose owner was L survives.
func (s *Store) Delete(link identity.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(link)
}

func (s *Store) deleteLocked(link identity.Link) {
	if _, ok := s.resources[link.ID]; !ok {
		return
	}

	idv1, _ := s.idv1Locked(link.ID)

	// Pass 1: purge every reference to link from every surviving resource.
	for id, res := range s.resources {
		if id == link.ID {
			continue
		}
		if updated, changed := res.PurgeLink(link); changed {
			s.resources[id] = updated
		}
	}

	// Remove link itself before recursing so owner-chains terminate.
	kind := s.resources[link.ID].Type
	delete(s.resources, link.ID)
	delete(s.aux, link.ID)
	delete(s.lastRecalledScene, link.ID)
	s.removeV1IndexLocked(link.ID)

	// Pass 2: cascade to every resource whose owner was link.
	var owned []identity.Link
	for id, res := range s.resources {
		if owner, ok := res.Owner(); ok && owner == link {
			owned = append(owned, identity.NewLink(id, res.Type))
		}
	}
	for _, child := range owned {
		s.deleteLocked(child)
	}

	payload := map[string]any{"id": link.ID.String(), "type": kind.String()}
	if idv1 != "" {
		payload["id_v1"] = idv1
	}
	s.notifier.Wake()
	s.ring.push(EventDelete, payload)
}

// AuxGet returns the sidecar metadata for id.
func (s *Store) AuxGet(id uuid.UUID) AuxData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aux[id]
}

// AuxSet overwrites the sidecar metadata for id.
func (s *Store) AuxSet(id uuid.UUID, data AuxData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aux[id] = data
}
