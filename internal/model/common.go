// Package model defines the ~40 Hue resource variants the store holds, plus
// the small shared value types (metadata, color, dimming, …) they're built
// from. Resources with schemas the bridge never needs to mutate field-by
// -field (DevicePower, Matter, BehaviorScript, …) are kept as opaque Raw
// documents rather than fully modeled structs, per the "dynamic-typed
// edges" design note in spec.md §9: a map, never a string, so a caller can
// still patch a single leaf key.
package model

import "github.com/eriknyberg/huebridge/internal/identity"

// Metadata is the common {name, archetype} envelope most resources carry.
type Metadata struct {
	Name      string `json:"name" yaml:"name"`
	Archetype string `json:"archetype,omitempty" yaml:"archetype,omitempty"`
}

// OnState is the shared on/off toggle.
type OnState struct {
	On bool `json:"on" yaml:"on"`
}

// Dimming is the shared 0-100% brightness field.
type Dimming struct {
	Brightness float64 `json:"brightness" yaml:"brightness"`
}

// ColorTemperature is the shared mirek color-temperature field.
type ColorTemperature struct {
	Mirek       int    `json:"mirek" yaml:"mirek"`
	MirekValid  bool   `json:"mirek_valid" yaml:"mirek_valid"`
	MirekSchema string `json:"mirek_schema,omitempty" yaml:"mirek_schema,omitempty"`
}

// XY is a CIE 1931 xy chromaticity coordinate.
type XY struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Color is the shared xy-color field.
type Color struct {
	XY XY `json:"xy" yaml:"xy"`
}

// Dynamics carries the duration of the most recent transition request.
type Dynamics struct {
	Duration int `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Gradient carries a Hue-proprietary multi-point gradient payload. Its
// point list is kept opaque (Raw) since the wire schema varies by light
// model and the bridge core never needs to inspect individual points —
// only to know a gradient was requested and forward it verbatim.
type Gradient struct {
	Mode   string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Points Raw    `json:"points,omitempty" yaml:"points,omitempty"`
}

// Effects carries Hue-proprietary effect selection (e.g. "candle",
// "fire") plus any timed-effect duration.
type Effects struct {
	Effect      string `json:"effect,omitempty" yaml:"effect,omitempty"`
	TimedEffect string `json:"timed_effect,omitempty" yaml:"timed_effect,omitempty"`
	Duration    int    `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Raw is an opaque, field-addressable JSON document used for resource
// variants whose schema this bridge never needs to model precisely.
type Raw map[string]any

// SceneStatus is the three-state recall status of a Scene.
type SceneStatus string

const (
	SceneStatusActive   SceneStatus = "dynamic_palette"
	SceneStatusStatic   SceneStatus = "static"
	SceneStatusInactive SceneStatus = "inactive"
)

// RecallAction is the action requested in a SceneUpdate's recall block.
type RecallAction string

const (
	RecallActive RecallAction = "active"
	RecallStatic RecallAction = "static"
	RecallNone   RecallAction = ""
)

// Recall is the optional recall instruction on a scene update.
type Recall struct {
	Action RecallAction `json:"action,omitempty" yaml:"action,omitempty"`
}

// ProductData describes a Device's manufacturer/model identity.
type ProductData struct {
	ManufacturerName string `json:"manufacturer_name" yaml:"manufacturer_name"`
	ModelID          string `json:"model_id" yaml:"model_id"`
	ProductName      string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
}

// KindOf returns the identity.Kind that backs the given model type. It's used
// by the store's generic accessors to verify a requested link's type tag
// against the Go type the caller asked for, so a mismatched Get[T] fails
// with TypeMismatch instead of silently returning the wrong variant.
func KindOf[T any]() identity.Kind {
	var zero T
	switch any(zero).(type) {
	case Light:
		return identity.KindLight
	case Room:
		return identity.KindRoom
	case Zone:
		return identity.KindZone
	case Scene:
		return identity.KindScene
	case SmartScene:
		return identity.KindSmartScene
	case GroupedLight:
		return identity.KindGroupedLight
	case Device:
		return identity.KindDevice
	case Bridge:
		return identity.KindBridge
	case BridgeHome:
		return identity.KindBridgeHome
	case Entertainment:
		return identity.KindEntertainment
	case EntertainmentConfiguration:
		return identity.KindEntertainmentConfiguration
	case Button:
		return identity.KindButton
	case Motion:
		return identity.KindMotion
	case Contact:
		return identity.KindContact
	case Temperature:
		return identity.KindTemperature
	case LightLevel:
		return identity.KindLightLevel
	case ZigbeeConnectivity:
		return identity.KindZigbeeConnectivity
	case ZigbeeDeviceDiscovery:
		return identity.KindZigbeeDeviceDiscovery
	case InternetConnectivity:
		return identity.KindInternetConnectivity
	case GroupedLightLevel:
		return identity.KindGroupedLightLevel
	case GroupedMotion:
		return identity.KindGroupedMotion
	case CameraMotion:
		return identity.KindCameraMotion
	case AuthV1:
		return identity.KindAuthV1
	case BehaviorInstance:
		return identity.KindBehaviorInstance
	case BehaviorScript:
		return identity.KindBehaviorScript
	case DevicePower:
		return identity.KindDevicePower
	case DeviceSoftwareUpdate:
		return identity.KindDeviceSoftwareUpdate
	case GeofenceClient:
		return identity.KindGeofenceClient
	case Geolocation:
		return identity.KindGeolocation
	case Homekit:
		return identity.KindHomekit
	case Matter:
		return identity.KindMatter
	case MatterFabric:
		return identity.KindMatterFabric
	case PrivateGroup:
		return identity.KindPrivateGroup
	case PublicImage:
		return identity.KindPublicImage
	case RelativeRotary:
		return identity.KindRelativeRotary
	case ServiceGroup:
		return identity.KindServiceGroup
	case Taurus:
		return identity.KindTaurus
	case Tamper:
		return identity.KindTamper
	case ZgpConnectivity:
		return identity.KindZgpConnectivity
	default:
		return -1
	}
}
