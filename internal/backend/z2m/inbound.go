package z2m

import "encoding/json"

// DeviceState is the subset of a z2m per-device state publish this
// adapter projects onto a Light resource.
type DeviceState struct {
	State      string   `json:"state"`
	Brightness *float64 `json:"brightness"`
	ColorTemp  *int     `json:"color_temp"`
	Color      *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"color"`
	LinkQuality *int `json:"linkquality"`
}

// ParseDeviceState decodes one zigbee2mqtt/<friendly-name> state publish.
func ParseDeviceState(payload []byte) (DeviceState, error) {
	var s DeviceState
	err := json.Unmarshal(payload, &s)
	return s, err
}

// BridgeDevice is one entry of a bridge/devices publish.
type BridgeDevice struct {
	FriendlyName   string `json:"friendly_name"`
	IEEEAddress    string `json:"ieee_address"`
	NetworkAddress int    `json:"network_address"`
	Type           string `json:"type"`
}

// ParseBridgeDevices decodes a bridge/devices publish into the network
// map this adapter maintains (topic/friendly-name -> device-info).
func ParseBridgeDevices(payload []byte) (map[string]DeviceInfo, error) {
	var devices []BridgeDevice
	if err := json.Unmarshal(payload, &devices); err != nil {
		return nil, err
	}
	out := make(map[string]DeviceInfo, len(devices))
	for _, d := range devices {
		out[d.FriendlyName] = DeviceInfo{IEEEAddress: d.IEEEAddress, NetworkAddress: d.NetworkAddress}
	}
	return out, nil
}

// BridgeEvent is a bridge/event publish: device joined/left/announced.
type BridgeEvent struct {
	Type string `json:"type"`
	Data struct {
		FriendlyName string `json:"friendly_name"`
		IEEEAddress  string `json:"ieee_address"`
	} `json:"data"`
}

// ParseBridgeEvent decodes a bridge/event publish.
func ParseBridgeEvent(payload []byte) (BridgeEvent, error) {
	var ev BridgeEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}

// ZigbeeStatusFor maps a bridge/event type to the ZigbeeConnectivity
// status this adapter should project.
func ZigbeeStatusFor(eventType string) (status string, ok bool) {
	switch eventType {
	case "device_joined", "device_announce":
		return "connected", true
	case "device_leave":
		return "disconnected", true
	default:
		return "", false
	}
}
