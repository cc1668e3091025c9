package z2m

import "testing"

func TestParseDeviceState(t *testing.T) {
	payload := []byte(`{"state":"ON","brightness":200,"color_temp":300,"color":{"x":0.3,"y":0.3}}`)

	got, err := ParseDeviceState(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.State != "ON" || got.Brightness == nil || *got.Brightness != 200 {
		t.Fatalf("unexpected parse result: %+v", got)
	}
}

func TestParseBridgeDevices(t *testing.T) {
	payload := []byte(`[{"friendly_name":"lamp-1","ieee_address":"0x1234","network_address":55}]`)

	got, err := ParseBridgeDevices(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, ok := got["lamp-1"]
	if !ok || info.NetworkAddress != 55 || info.IEEEAddress != "0x1234" {
		t.Fatalf("unexpected device info: %+v", got)
	}
}

func TestZigbeeStatusForKnownEvents(t *testing.T) {
	cases := map[string]string{
		"device_joined":   "connected",
		"device_announce": "connected",
		"device_leave":    "disconnected",
	}
	for eventType, want := range cases {
		got, ok := ZigbeeStatusFor(eventType)
		if !ok || got != want {
			t.Fatalf("ZigbeeStatusFor(%q) = %q,%v want %q", eventType, got, ok, want)
		}
	}
}

func TestZigbeeStatusForUnknownEvent(t *testing.T) {
	if _, ok := ZigbeeStatusFor("something_else"); ok {
		t.Fatal("expected unknown event type to return ok=false")
	}
}

func TestFriendlyNameFromTopic(t *testing.T) {
	name, ok := friendlyNameFromTopic("zigbee2mqtt/lamp-1")
	if !ok || name != "lamp-1" {
		t.Fatalf("expected lamp-1, got %q, %v", name, ok)
	}

	if _, ok := friendlyNameFromTopic("zigbee2mqtt/lamp-1/availability"); ok {
		t.Fatal("expected nested topic to be rejected")
	}
	if _, ok := friendlyNameFromTopic("bridge/devices"); ok {
		t.Fatal("expected non-device topic to be rejected")
	}
}
