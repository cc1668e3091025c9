package store

import (
	"github.com/google/uuid"

	"github.com/eriknyberg/huebridge/internal/model"
)

// ResetAllStreaming forces every Light and EntertainmentConfiguration out
// of streaming state. Called once on startup to clear flags left set by a
// process that crashed mid-stream — without this, a Light or
// EntertainmentConfiguration could report itself permanently "in use" by
// an entertainment session nothing is actually running.
func (s *Store) ResetAllStreaming() {
	_ = UpdateByType[model.Light](s, func(_ uuid.UUID, l model.Light) model.Light {
		l.Streaming = false
		return l
	})
	_ = UpdateByType[model.EntertainmentConfiguration](s, func(_ uuid.UUID, c model.EntertainmentConfiguration) model.EntertainmentConfiguration {
		c.Streaming = false
		return c
	})
}
