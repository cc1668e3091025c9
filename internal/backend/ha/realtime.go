package ha

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eriknyberg/huebridge/internal/errs"
	"github.com/eriknyberg/huebridge/internal/harun"
)

// dialTimeout bounds the websocket handshake and auth round trip.
const dialTimeout = 20 * time.Second

type wsMessage struct {
	ID      int             `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success *bool           `json:"success,omitempty"`
	Event   json.RawMessage `json:"event,omitempty"`
}

// Realtime is the authenticated state_changed websocket subscription
// (spec.md §4.6). Next returns each state_changed event; Close tears the
// socket down.
type Realtime struct {
	conn *websocket.Conn
}

// DialRealtime performs the full auth handshake described in spec.md
// §4.6: wait for auth_required, send the token, fail on auth_invalid,
// then subscribe to state_changed.
func DialRealtime(ctx context.Context, cfg harun.Config) (*Realtime, error) {
	wsURL, err := cfg.WebsocketURL()
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing home assistant websocket: %v", errs.ErrService, err)
	}

	var required wsMessage
	if err := conn.ReadJSON(&required); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: reading auth_required: %v", errs.ErrService, err)
	}
	if required.Type != "auth_required" {
		conn.Close()
		return nil, fmt.Errorf("%w: expected auth_required, got %s", errs.ErrService, required.Type)
	}

	if err := conn.WriteJSON(map[string]string{"type": "auth", "access_token": cfg.Token}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: sending auth: %v", errs.ErrService, err)
	}

	var authResp wsMessage
	if err := conn.ReadJSON(&authResp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: reading auth response: %v", errs.ErrService, err)
	}
	if authResp.Type != "auth_ok" {
		conn.Close()
		return nil, fmt.Errorf("%w: home assistant auth failed: %s", errs.ErrService, authResp.Type)
	}

	if err := conn.WriteJSON(map[string]any{"id": 1, "type": "subscribe_events", "event_type": "state_changed"}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: subscribing to state_changed: %v", errs.ErrService, err)
	}

	var subResp wsMessage
	if err := conn.ReadJSON(&subResp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: reading subscribe result: %v", errs.ErrService, err)
	}
	if subResp.Success == nil || !*subResp.Success {
		conn.Close()
		return nil, fmt.Errorf("%w: home assistant rejected state_changed subscription", errs.ErrService)
	}

	return &Realtime{conn: conn}, nil
}

// StateChangedEvent is the event payload's relevant subset.
type StateChangedEvent struct {
	Data struct {
		EntityID string       `json:"entity_id"`
		NewState *EntityState `json:"new_state"`
	} `json:"data"`
}

// Next blocks for the next state_changed event.
func (r *Realtime) Next() (StateChangedEvent, error) {
	var msg wsMessage
	if err := r.conn.ReadJSON(&msg); err != nil {
		return StateChangedEvent{}, fmt.Errorf("%w: reading websocket event: %v", errs.ErrService, err)
	}

	var ev StateChangedEvent
	if len(msg.Event) > 0 {
		if err := json.Unmarshal(msg.Event, &ev); err != nil {
			return StateChangedEvent{}, fmt.Errorf("%w: decoding state_changed event: %v", errs.ErrService, err)
		}
	}
	return ev, nil
}

// Close tears down the websocket.
func (r *Realtime) Close() error {
	return r.conn.Close()
}

// EntityRegistryDisable performs the one-shot config/entity_registry/update
// request spec.md §4.6 describes for SensorEnabledUpdate: id=1, requires a
// prior auth_ok (assumed already established on r), and a success result.
func (r *Realtime) EntityRegistryDisable(entityID string, disable bool) error {
	var disabledBy any
	if disable {
		disabledBy = "user"
	}

	if err := r.conn.WriteJSON(map[string]any{
		"id":          1,
		"type":        "config/entity_registry/update",
		"entity_id":   entityID,
		"disabled_by": disabledBy,
	}); err != nil {
		return fmt.Errorf("%w: sending entity_registry/update: %v", errs.ErrService, err)
	}

	var resp wsMessage
	if err := r.conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("%w: reading entity_registry/update result: %v", errs.ErrService, err)
	}
	if resp.Success == nil || !*resp.Success {
		return fmt.Errorf("%w: home assistant rejected entity_registry/update", errs.ErrService)
	}
	return nil
}
