package z2m

// DeviceInfo is the subset of a z2m device's bridge/devices entry this
// adapter keeps, keyed by friendly name in the network map (spec.md
// §4.5: "network: topic -> device-info").
type DeviceInfo struct {
	IEEEAddress    string
	NetworkAddress int
}

// SegmentAddress is a channel member resolved to a concrete Zigbee
// address for the entertainment stream (spec.md §4.5: "resolve channels
// to segment-addresses (device.network_address + member.index)").
type SegmentAddress struct {
	FriendlyName string
	Address      int
}
