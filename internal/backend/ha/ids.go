package ha

import (
	"crypto/sha1"

	"github.com/eriknyberg/huebridge/internal/identity"
)

// backendName tags every deterministic id this adapter derives, so two
// differently-configured HA backends (unlikely, but the id scheme
// doesn't assume a singleton) never collide.
const backendName = "home-assistant"

func deviceLink(entityID string) identity.Link {
	return identity.Deterministic(identity.KindDevice, "hass:"+backendName+":"+entityID+":device")
}

func lightLink(entityID string) identity.Link {
	return identity.Deterministic(identity.KindLight, "hass:"+backendName+":"+entityID+":light")
}

func motionLink(entityID string) identity.Link {
	return identity.Deterministic(identity.KindMotion, "hass:"+backendName+":"+entityID+":motion")
}

func contactLink(entityID string) identity.Link {
	return identity.Deterministic(identity.KindContact, "hass:"+backendName+":"+entityID+":contact")
}

func zigbeeConnectivityLink(entityID string) identity.Link {
	return identity.Deterministic(identity.KindZigbeeConnectivity, "hass:"+backendName+":"+entityID+":zbc")
}

func roomLink(roomID string) identity.Link {
	return identity.Deterministic(identity.KindRoom, "hass:"+backendName+":room:"+roomID)
}

func groupedLightLink(roomID string) identity.Link {
	return identity.Deterministic(identity.KindGroupedLight, "hass:"+backendName+":grouped:"+roomID)
}

// eui64ForDevice derives a synthetic EUI-64 MAC-like address from the
// device link's id bytes, for the ZigbeeConnectivity placeholder HA
// entities need (they have no real Zigbee address).
func eui64ForDevice(link identity.Link) string {
	sum := sha1.Sum(link.ID[:])
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 0, 23)
	for i := 0; i < 8; i++ {
		if i > 0 {
			out = append(out, ':')
		}
		b := sum[i]
		out = append(out, hexDigits[b>>4], hexDigits[b&0xf])
	}
	return string(out)
}
