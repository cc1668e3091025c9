package z2m

import (
	"context"

	"golang.org/x/time/rate"
)

// FrameThrottle is the token bucket sized to the configured fps that
// gates outbound entertainment frames; a frame that misses its window is
// dropped rather than queued (spec.md §5: "Throttling").
type FrameThrottle struct {
	limiter *rate.Limiter
}

// NewFrameThrottle builds a throttle allowing up to fps frames/second,
// with a burst of one (no queuing).
func NewFrameThrottle(fps int) *FrameThrottle {
	if fps <= 0 {
		fps = 1
	}
	return &FrameThrottle{limiter: rate.NewLimiter(rate.Limit(fps), 1)}
}

// Allow reports whether a frame may be sent right now; false means the
// frame must be dropped, not queued.
func (t *FrameThrottle) Allow() bool {
	return t.limiter.Allow()
}

// SmoothingInterval returns the stream's configured smoothing interval in
// milliseconds, derived from the same fps the throttle was built with
// (spec.md §4.5: "set smoothing to the throttle interval").
func SmoothingInterval(fps int) int {
	if fps <= 0 {
		fps = 1
	}
	return 1000 / fps
}

// Stream is one open entertainment stream to z2m: frames are dropped
// through the throttle before being forwarded.
type Stream struct {
	client   *Client
	throttle *FrameThrottle
	topic    string
}

// NewStream opens an entertainment stream over an already-dialed Client.
func NewStream(client *Client, topic string, fps int) *Stream {
	return &Stream{client: client, throttle: NewFrameThrottle(fps), topic: topic}
}

// Send forwards frame if the throttle allows it; a dropped frame is not
// an error.
func (s *Stream) Send(ctx context.Context, frame any) error {
	if !s.throttle.Allow() {
		return nil
	}
	return s.client.Send(s.topic, frame)
}
