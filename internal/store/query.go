package store

import (
	"github.com/google/uuid"

	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
)

// ResourcesByType returns the ids of every resource currently stored as T,
// in map-iteration (unspecified) order.
func ResourcesByType[T any](s *Store) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []uuid.UUID
	for id, res := range s.resources {
		if _, ok := res.Body.(T); ok {
			out = append(out, id)
		}
	}
	return out
}

// ResourcesByOwner returns the ids of every resource whose Owner() is
// owner — the Light/service children of a Device, for instance.
func (s *Store) ResourcesByOwner(owner identity.Link) []identity.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []identity.Link
	for id, res := range s.resources {
		if o, ok := res.Owner(); ok && o == owner {
			out = append(out, identity.NewLink(id, res.Type))
		}
	}
	return out
}

// ScenesForRoom returns every Scene (or SmartScene) whose Group is room.
func (s *Store) ScenesForRoom(room identity.Link) []identity.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []identity.Link
	for id, res := range s.resources {
		switch b := res.Body.(type) {
		case model.Scene:
			if b.Group == room {
				out = append(out, identity.NewLink(id, res.Type))
			}
		case model.SmartScene:
			if b.Group == room {
				out = append(out, identity.NewLink(id, res.Type))
			}
		}
	}
	return out
}

// AllLinks returns every resource currently stored, as (id, type) links.
// Used by bootstrap/persistence to enumerate the whole graph without
// exposing the resources map itself.
func (s *Store) AllLinks() []identity.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]identity.Link, 0, len(s.resources))
	for id, res := range s.resources {
		out = append(out, identity.NewLink(id, res.Type))
	}
	return out
}
