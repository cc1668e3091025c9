package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
)

// v1 counter namespaces. Lights and groups each keep their own
// free-running counter (spec.md §4.1's id_v1 note) rather than sharing one
// flat integer space; scenes render their room-scoped index instead.
const (
	v1NamespaceLight = "light"
	v1NamespaceGroup = "group"
)

// idv1Locked computes the legacy v1 path for id, assigning it a fresh
// index in the appropriate namespace on first use. Must be called with
// s.mu already held. Returns "" for resource types with no v1 surface.
func (s *Store) idv1Locked(id uuid.UUID) (string, bool) {
	res, ok := s.resources[id]
	if !ok {
		return "", false
	}

	switch res.Type {
	case identity.KindLight:
		return s.assignV1Locked(id, v1NamespaceLight, "/lights/%d")

	case identity.KindBridgeHome:
		return s.pinV1Locked(id, v1NamespaceGroup, 0, "/groups/%d")

	case identity.KindRoom, identity.KindZone, identity.KindEntertainmentConfiguration:
		return s.assignV1Locked(id, v1NamespaceGroup, "/groups/%d")

	case identity.KindScene:
		// Scene indices are room-scoped (NextSceneID), not a flat global
		// counter: id_v1 merely renders whatever index the scene was
		// created with, rather than allocating one of its own.
		aux, ok := s.aux[id]
		if !ok || aux.Index == nil {
			return "", false
		}
		return fmt.Sprintf("/scenes/%d", *aux.Index), true

	case identity.KindDevice:
		// A device has no v1 identity of its own; it borrows the id_v1 of
		// whichever of its services is a Light (spec.md §4.1: "Device
		// derives its v1 id from its light service").
		dev, ok := res.Body.(model.Device)
		if !ok {
			return "", false
		}
		for _, svc := range dev.Services {
			if svc.Type != identity.KindLight {
				continue
			}
			if lightRes, ok := s.resources[svc.ID]; ok && lightRes.Type == identity.KindLight {
				return s.idv1Locked(svc.ID)
			}
		}
		return "", false

	default:
		return "", false
	}
}

// assignV1Locked returns id's existing index in namespace if one was
// already assigned (from aux or the reverse index), otherwise allocates
// the next free integer, recording it in both aux and the reverse index.
func (s *Store) assignV1Locked(id uuid.UUID, namespace, format string) (string, bool) {
	if aux, ok := s.aux[id]; ok && aux.Index != nil {
		path := fmt.Sprintf(format, *aux.Index)
		s.v1index[path] = id
		return path, true
	}

	n := s.v1counter[namespace]
	s.v1counter[namespace] = n + 1

	aux := s.aux[id]
	idx := n
	aux.Index = &idx
	s.aux[id] = aux

	path := fmt.Sprintf(format, n)
	s.v1index[path] = id
	return path, true
}

// pinV1Locked is assignV1Locked for the one resource (BridgeHome) whose
// legacy index is a fixed constant rather than the next free integer.
func (s *Store) pinV1Locked(id uuid.UUID, namespace string, fixed uint32, format string) (string, bool) {
	aux := s.aux[id]
	if aux.Index == nil {
		idx := fixed
		aux.Index = &idx
		s.aux[id] = aux
	}
	if s.v1counter[namespace] <= *aux.Index {
		s.v1counter[namespace] = *aux.Index + 1
	}
	path := fmt.Sprintf(format, *aux.Index)
	s.v1index[path] = id
	return path, true
}

// removeV1IndexLocked drops every reverse-index entry pointing at id, if
// one was assigned. Called from deleteLocked before the resource is gone
// so a freed index is never silently reused for a different id within
// the same process lifetime while stale entries linger.
func (s *Store) removeV1IndexLocked(id uuid.UUID) {
	for path, linked := range s.v1index {
		if linked == id {
			delete(s.v1index, path)
		}
	}
}

// IDv1 is the exported, locked form of idv1Locked, for the legacy
// HTTP surface (out of scope here) and for tests.
func (s *Store) IDv1(id uuid.UUID) (string, bool) {
	s.mu.Lock() // idv1Locked may allocate a fresh index, so it must write-lock.
	defer s.mu.Unlock()
	return s.idv1Locked(id)
}

// ByIDv1 resolves a legacy path ("/lights/3") back to its current id.
func (s *Store) ByIDv1(path string) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.v1index[path]
	return id, ok
}
