package z2m

import "testing"

func TestFrameThrottleDropsBurstBeyondCapacity(t *testing.T) {
	throttle := NewFrameThrottle(1)

	if !throttle.Allow() {
		t.Fatal("expected first frame to be allowed")
	}
	if throttle.Allow() {
		t.Fatal("expected a second immediate frame to be dropped by the token bucket")
	}
}

func TestSmoothingIntervalDerivedFromFPS(t *testing.T) {
	if got := SmoothingInterval(25); got != 40 {
		t.Fatalf("expected 40ms smoothing interval at 25fps, got %d", got)
	}
	if got := SmoothingInterval(0); got != 1000 {
		t.Fatalf("expected fallback of 1fps smoothing interval, got %d", got)
	}
}

func TestNormalizeURLAppendsDefaultAPIPath(t *testing.T) {
	got, err := NormalizeURL("ws://z2m.local", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ws://z2m.local/api?token=your-secret-token" {
		t.Fatalf("unexpected normalized url: %q", got)
	}
}

func TestNormalizeURLKeepsExplicitPathAndToken(t *testing.T) {
	got, err := NormalizeURL("ws://z2m.local/api", "mytoken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ws://z2m.local/api?token=mytoken" {
		t.Fatalf("unexpected normalized url: %q", got)
	}
}
