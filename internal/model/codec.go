package model

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/eriknyberg/huebridge/internal/identity"
)

// DecodeBody decodes a persisted resource body node into the concrete Go
// type its Kind implies — the mirror image of KindOf. Used only by the
// store's YAML persistence layer, which keeps resources tagged with their
// Kind rather than a Go type name so the file format stays stable across
// internal refactors.
func DecodeBody(kind identity.Kind, node yaml.Node) (any, error) {
	target, err := zeroForKind(kind)
	if err != nil {
		return nil, err
	}
	if err := node.Decode(target); err != nil {
		return nil, err
	}
	return derefBody(target), nil
}

func zeroForKind(kind identity.Kind) (any, error) {
	switch kind {
	case identity.KindLight:
		return &Light{}, nil
	case identity.KindRoom:
		return &Room{}, nil
	case identity.KindZone:
		return &Zone{}, nil
	case identity.KindScene:
		return &Scene{}, nil
	case identity.KindSmartScene:
		return &SmartScene{}, nil
	case identity.KindGroupedLight:
		return &GroupedLight{}, nil
	case identity.KindDevice:
		return &Device{}, nil
	case identity.KindBridge:
		return &Bridge{}, nil
	case identity.KindBridgeHome:
		return &BridgeHome{}, nil
	case identity.KindEntertainment:
		return &Entertainment{}, nil
	case identity.KindEntertainmentConfiguration:
		return &EntertainmentConfiguration{}, nil
	case identity.KindButton:
		return &Button{}, nil
	case identity.KindMotion:
		return &Motion{}, nil
	case identity.KindContact:
		return &Contact{}, nil
	case identity.KindTemperature:
		return &Temperature{}, nil
	case identity.KindLightLevel:
		return &LightLevel{}, nil
	case identity.KindZigbeeConnectivity:
		return &ZigbeeConnectivity{}, nil
	case identity.KindZigbeeDeviceDiscovery:
		return &ZigbeeDeviceDiscovery{}, nil
	case identity.KindInternetConnectivity:
		return &InternetConnectivity{}, nil
	case identity.KindGroupedLightLevel:
		return &GroupedLightLevel{}, nil
	case identity.KindGroupedMotion:
		return &GroupedMotion{}, nil
	case identity.KindCameraMotion:
		return &CameraMotion{}, nil
	case identity.KindAuthV1:
		return &AuthV1{}, nil
	case identity.KindBehaviorInstance:
		return &BehaviorInstance{}, nil
	case identity.KindBehaviorScript:
		return &BehaviorScript{}, nil
	case identity.KindDevicePower:
		return &DevicePower{}, nil
	case identity.KindDeviceSoftwareUpdate:
		return &DeviceSoftwareUpdate{}, nil
	case identity.KindGeofenceClient:
		return &GeofenceClient{}, nil
	case identity.KindGeolocation:
		return &Geolocation{}, nil
	case identity.KindHomekit:
		return &Homekit{}, nil
	case identity.KindMatter:
		return &Matter{}, nil
	case identity.KindMatterFabric:
		return &MatterFabric{}, nil
	case identity.KindPrivateGroup:
		return &PrivateGroup{}, nil
	case identity.KindPublicImage:
		return &PublicImage{}, nil
	case identity.KindRelativeRotary:
		return &RelativeRotary{}, nil
	case identity.KindServiceGroup:
		return &ServiceGroup{}, nil
	case identity.KindTaurus:
		return &Taurus{}, nil
	case identity.KindTamper:
		return &Tamper{}, nil
	case identity.KindZgpConnectivity:
		return &ZgpConnectivity{}, nil
	default:
		return nil, fmt.Errorf("decode: unknown resource kind %s", kind)
	}
}

func derefBody(target any) any {
	switch v := target.(type) {
	case *Light:
		return *v
	case *Room:
		return *v
	case *Zone:
		return *v
	case *Scene:
		return *v
	case *SmartScene:
		return *v
	case *GroupedLight:
		return *v
	case *Device:
		return *v
	case *Bridge:
		return *v
	case *BridgeHome:
		return *v
	case *Entertainment:
		return *v
	case *EntertainmentConfiguration:
		return *v
	case *Button:
		return *v
	case *Motion:
		return *v
	case *Contact:
		return *v
	case *Temperature:
		return *v
	case *LightLevel:
		return *v
	case *ZigbeeConnectivity:
		return *v
	case *ZigbeeDeviceDiscovery:
		return *v
	case *InternetConnectivity:
		return *v
	case *GroupedLightLevel:
		return *v
	case *GroupedMotion:
		return *v
	case *CameraMotion:
		return *v
	case *AuthV1:
		return *v
	case *BehaviorInstance:
		return *v
	case *BehaviorScript:
		return *v
	case *DevicePower:
		return *v
	case *DeviceSoftwareUpdate:
		return *v
	case *GeofenceClient:
		return *v
	case *Geolocation:
		return *v
	case *Homekit:
		return *v
	case *Matter:
		return *v
	case *MatterFabric:
		return *v
	case *PrivateGroup:
		return *v
	case *PublicImage:
		return *v
	case *RelativeRotary:
		return *v
	case *ServiceGroup:
		return *v
	case *Taurus:
		return *v
	case *Tamper:
		return *v
	case *ZgpConnectivity:
		return *v
	default:
		return target
	}
}
