package model

// The remaining resource variants have schemas the bridge core never
// patches field-by-field — the Hue app probes them, but nothing here
// ever needs more than "does this id exist and round-trip its JSON".
// Each is a distinct named type over Raw rather than a bare `map` so the
// store's generic Get[T]/KindOf[T] machinery can still type-check them
// individually.
type (
	AuthV1                 Raw
	BehaviorInstance       Raw
	BehaviorScript         Raw
	DevicePower            Raw
	DeviceSoftwareUpdate   Raw
	GeofenceClient         Raw
	Geolocation            Raw
	Homekit                Raw
	Matter                 Raw
	MatterFabric           Raw
	PrivateGroup           Raw
	PublicImage            Raw
	RelativeRotary         Raw
	ServiceGroup           Raw
	Taurus                 Raw
	Tamper                 Raw
	ZgpConnectivity        Raw
)
