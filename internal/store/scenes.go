package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/eriknyberg/huebridge/internal/errs"
	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
)

// maxScenesPerRoom is the AuxData index ceiling a room's scenes share
// (spec.md §3's "Scene numbering").
const maxScenesPerRoom = 100

// NextSceneID returns the smallest non-negative integer not already used
// as the AuxData index of any Scene whose Group is room, failing with
// ErrFull once every slot in [0,100) is taken.
func (s *Store) NextSceneID(room identity.Link) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	used := make(map[uint32]bool, maxScenesPerRoom)
	for id, res := range s.resources {
		scene, ok := res.Body.(model.Scene)
		if !ok || scene.Group != room {
			continue
		}
		if aux, ok := s.aux[id]; ok && aux.Index != nil {
			used[*aux.Index] = true
		}
	}

	for i := uint32(0); i < maxScenesPerRoom; i++ {
		if !used[i] {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: room %s has %d scenes", errs.ErrFull, room, maxScenesPerRoom)
}

// RecallScene applies the recall invariant for the scene's room: the
// recalled scene becomes Static, every sibling scene in the same room is
// forced to Inactive, and the room's last-recalled pointer (read back
// through LastRecalledScene) is updated. Every status flip goes through Update so
// it lands on the event stream (spec.md §4.2) — none of this is a direct
// s.resources write.
func (s *Store) RecallScene(room identity.Link, recalled identity.Link) {
	s.mu.RLock()
	ids := make([]uuid.UUID, 0, maxScenesPerRoom)
	for id, res := range s.resources {
		if scene, ok := res.Body.(model.Scene); ok && scene.Group == room {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range ids {
		want := model.SceneStatusInactive
		if id == recalled.ID {
			want = model.SceneStatusStatic
		}
		_ = Update[model.Scene](s, id, func(scene model.Scene) model.Scene {
			scene.Status = want
			return scene
		})
	}

	s.mu.Lock()
	s.lastRecalledScene[room.ID] = recalled.ID
	s.notifier.Wake()
	s.mu.Unlock()
}

// LastRecalledScene returns the most recently recalled scene for room, if
// any scene has been recalled there since the store was created or
// restored from persisted state.
func (s *Store) LastRecalledScene(room identity.Link) (identity.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.lastRecalledScene[room.ID]
	if !ok {
		return identity.Link{}, false
	}
	res, ok := s.resources[id]
	if !ok {
		return identity.Link{}, false
	}
	return identity.NewLink(id, res.Type), true
}
