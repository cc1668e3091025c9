package store

import (
	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
)

// EnsureCoreBridgeResources is Bootstrap's idempotent half: it adds every
// resource variant a Hue app expects a bridge to always expose, deriving
// each id deterministically from bridgeID so restarts never renumber
// anything. Safe to call on every startup — Add is itself idempotent.
func (s *Store) EnsureCoreBridgeResources(bridgeID, timeZone string) {
	bridgeLink := identity.Deterministic(identity.KindBridge, bridgeID)
	s.Add(bridgeLink, model.Bridge{BridgeID: bridgeID, TimeZone: timeZone})

	homeDeviceLink := identity.Deterministic(identity.KindDevice, bridgeID+"HOME-DEVICE")
	bridgeDeviceLink := identity.Deterministic(identity.KindDevice, bridgeID+"-DEVICE")

	zigbeeConnLink := identity.Deterministic(identity.KindZigbeeConnectivity, bridgeID+"-ZC")
	s.Add(zigbeeConnLink, model.ZigbeeConnectivity{
		Owner:      bridgeDeviceLink,
		Status:     "connected",
		MACAddress: "00:00:00:00:00:00",
	})

	zigbeeDiscoveryLink := identity.Deterministic(identity.KindZigbeeDeviceDiscovery, bridgeID+"-ZD")
	s.Add(zigbeeDiscoveryLink, model.ZigbeeDeviceDiscovery{
		Owner:  bridgeDeviceLink,
		Status: "ready",
	})

	internetLink := identity.Deterministic(identity.KindInternetConnectivity, bridgeID+"-INET")
	s.Add(internetLink, model.InternetConnectivity{Status: "connected"})

	entertainmentLink := identity.Deterministic(identity.KindEntertainment, bridgeID+"-ENT")
	s.Add(entertainmentLink, model.Entertainment{
		Owner:    bridgeDeviceLink,
		Renderer: false,
	})

	s.Add(bridgeDeviceLink, model.Device{
		Metadata:    model.Metadata{Name: "Bifrost Bridge", Archetype: "bridge_v2"},
		ProductData: model.ProductData{ManufacturerName: "Signify Netherlands B.V.", ModelID: "BSB002", ProductName: "Hue Bridge"},
		Services:    []identity.Link{bridgeLink, zigbeeConnLink, zigbeeDiscoveryLink, internetLink, entertainmentLink},
	})

	groupedLightLink := identity.Deterministic(identity.KindGroupedLight, bridgeID+"HOME")
	s.Add(groupedLightLink, model.GroupedLight{
		Owner: identity.Deterministic(identity.KindBridgeHome, bridgeID+"HOME"),
		On:    model.OnState{On: false},
	})

	s.Add(homeDeviceLink, model.Device{
		Metadata:    model.Metadata{Name: "Bifrost Bridge Home", Archetype: "bridge_v2"},
		ProductData: model.ProductData{ManufacturerName: "Signify Netherlands B.V.", ModelID: "BSB002", ProductName: "Hue Bridge"},
		Services:    []identity.Link{groupedLightLink},
	})

	homeLink := identity.Deterministic(identity.KindBridgeHome, bridgeID+"HOME")
	s.Add(homeLink, model.BridgeHome{
		Children: []identity.Link{homeDeviceLink},
		Services: []identity.Link{groupedLightLink},
	})
}

// BridgeLink returns the deterministic Bridge link for bridgeID without
// requiring the resource to already be present.
func BridgeLink(bridgeID string) identity.Link {
	return identity.Deterministic(identity.KindBridge, bridgeID)
}

// BridgeHomeLink returns the deterministic BridgeHome link for bridgeID.
func BridgeHomeLink(bridgeID string) identity.Link {
	return identity.Deterministic(identity.KindBridgeHome, bridgeID+"HOME")
}
