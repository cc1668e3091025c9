// Package z2m is the Zigbee2MQTT backend adapter (spec.md §4.5): a
// websocket client to a z2m bridge's JSON-over-websocket API, translating
// Hue intents into z2m set/get/scene/group commands and projecting
// inbound device/bridge events onto the resource store.
package z2m

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eriknyberg/huebridge/internal/errs"
)

// dialTimeout bounds the websocket handshake.
const dialTimeout = 20 * time.Second

// Client is the raw z2m websocket transport: send/receive framed JSON
// messages. Send may be called from several goroutines (writeMu
// serializes the writes); Next is read by one goroutine at a time.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Message is the generic envelope every z2m websocket frame carries.
type Message struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// NormalizeURL appends "/api" if the configured URL has no path, and
// appends "?token=your-secret-token" if no token is configured (the z2m
// 2.x convention per spec.md §4.5).
func NormalizeURL(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: parsing z2m url: %v", errs.ErrService, err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/api"
	}
	if token == "" {
		q := u.Query()
		q.Set("token", "your-secret-token")
		u.RawQuery = q.Encode()
	} else {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Dial connects to the normalized z2m websocket URL.
func Dial(ctx context.Context, rawURL, token string) (*Client, error) {
	normalized, err := NormalizeURL(rawURL, token)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, normalized, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing z2m websocket: %v", errs.ErrService, err)
	}
	return &Client{conn: conn}, nil
}

// Send publishes one message to topic.
func (c *Client) Send(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding z2m payload for %s: %v", errs.ErrService, topic, err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(Message{Topic: topic, Payload: body}); err != nil {
		return fmt.Errorf("%w: sending z2m message to %s: %v", errs.ErrService, topic, err)
	}
	return nil
}

// Next blocks for the next inbound message.
func (c *Client) Next() (Message, error) {
	var msg Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		return Message{}, fmt.Errorf("%w: reading z2m websocket message: %v", errs.ErrService, err)
	}
	return msg, nil
}

// Close tears down the websocket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// friendlyNameFromTopic strips the "zigbee2mqtt/" device-state prefix z2m
// uses for per-device state topics, returning the friendly name alone.
func friendlyNameFromTopic(topic string) (string, bool) {
	const prefix = "zigbee2mqtt/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(topic, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
