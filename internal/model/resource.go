package model

import (
	"github.com/google/uuid"

	"github.com/eriknyberg/huebridge/internal/identity"
)

// Resource is the store's envelope around one variant's body: a tagged
// union dispatched on Type, matching the "single sum type with a type tag"
// design note in spec.md §9. Body holds one of the concrete structs in
// variants.go/opaque.go.
type Resource struct {
	ID   uuid.UUID
	Type identity.Kind
	Body any
}

func (r Resource) Link() identity.Link {
	return identity.NewLink(r.ID, r.Type)
}

// Owner returns the single resource this one is logically owned by, if
// any. Delete(link) uses this to cascade: every resource whose owner is
// the deleted link is itself deleted.
func (r Resource) Owner() (identity.Link, bool) {
	switch b := r.Body.(type) {
	case Light:
		return b.Owner, !b.Owner.IsZero()
	case GroupedLight:
		return b.Owner, !b.Owner.IsZero()
	case Entertainment:
		return b.Owner, !b.Owner.IsZero()
	case Button:
		return b.Owner, !b.Owner.IsZero()
	case Motion:
		return b.Owner, !b.Owner.IsZero()
	case Contact:
		return b.Owner, !b.Owner.IsZero()
	case Temperature:
		return b.Owner, !b.Owner.IsZero()
	case LightLevel:
		return b.Owner, !b.Owner.IsZero()
	case ZigbeeConnectivity:
		return b.Owner, !b.Owner.IsZero()
	case ZigbeeDeviceDiscovery:
		return b.Owner, !b.Owner.IsZero()
	case GroupedLightLevel:
		return b.Owner, !b.Owner.IsZero()
	case GroupedMotion:
		return b.Owner, !b.Owner.IsZero()
	case CameraMotion:
		return b.Owner, !b.Owner.IsZero()
	default:
		return identity.Link{}, false
	}
}

// References returns every link this resource holds, in any role (owner,
// child, service, scene target, entertainment member/location). Delete(L)
// purges L from the References of every other resource before cascading.
func (r Resource) References() []identity.Link {
	switch b := r.Body.(type) {
	case Room:
		out := append([]identity.Link{}, b.Children...)
		return append(out, b.Services...)
	case Zone:
		out := append([]identity.Link{}, b.Children...)
		return append(out, b.Services...)
	case BridgeHome:
		out := append([]identity.Link{}, b.Children...)
		return append(out, b.Services...)
	case Device:
		return append([]identity.Link{}, b.Services...)
	case Scene:
		out := []identity.Link{b.Group}
		for _, a := range b.Actions {
			out = append(out, a.Target)
		}
		return out
	case SmartScene:
		return []identity.Link{b.Group}
	case GroupedLight:
		return []identity.Link{b.Owner}
	case Entertainment:
		return []identity.Link{b.Owner}
	case EntertainmentConfiguration:
		out := []identity.Link{}
		for _, sl := range b.Locations.ServiceLocations {
			out = append(out, sl.Service)
		}
		for _, ch := range b.Channels {
			for _, m := range ch.Members {
				out = append(out, m.Service)
			}
		}
		return out
	case Button:
		return []identity.Link{b.Owner}
	case Motion:
		return []identity.Link{b.Owner}
	case Contact:
		return []identity.Link{b.Owner}
	case Temperature:
		return []identity.Link{b.Owner}
	case LightLevel:
		return []identity.Link{b.Owner}
	case ZigbeeConnectivity:
		return []identity.Link{b.Owner}
	case ZigbeeDeviceDiscovery:
		return []identity.Link{b.Owner}
	case GroupedLightLevel:
		return []identity.Link{b.Owner}
	case GroupedMotion:
		return []identity.Link{b.Owner}
	case CameraMotion:
		return []identity.Link{b.Owner}
	case Light:
		if !b.Owner.IsZero() {
			return []identity.Link{b.Owner}
		}
		return nil
	default:
		return nil
	}
}

// PurgeLink removes every occurrence of link from r's reference-holding
// fields (children/services/actions/locations/members), returning a
// possibly-modified copy and whether anything changed.
func (r Resource) PurgeLink(link identity.Link) (Resource, bool) {
	changed := false
	removeLink := func(links []identity.Link) []identity.Link {
		out := links[:0:0]
		for _, l := range links {
			if l == link {
				changed = true
				continue
			}
			out = append(out, l)
		}
		return out
	}

	switch b := r.Body.(type) {
	case Room:
		b.Children = removeLink(b.Children)
		b.Services = removeLink(b.Services)
		r.Body = b
	case Zone:
		b.Children = removeLink(b.Children)
		b.Services = removeLink(b.Services)
		r.Body = b
	case BridgeHome:
		b.Children = removeLink(b.Children)
		b.Services = removeLink(b.Services)
		r.Body = b
	case Device:
		b.Services = removeLink(b.Services)
		r.Body = b
	case Scene:
		actions := b.Actions[:0:0]
		for _, a := range b.Actions {
			if a.Target == link {
				changed = true
				continue
			}
			actions = append(actions, a)
		}
		b.Actions = actions
		r.Body = b
	case EntertainmentConfiguration:
		locs := b.Locations.ServiceLocations[:0:0]
		for _, sl := range b.Locations.ServiceLocations {
			if sl.Service == link {
				changed = true
				continue
			}
			locs = append(locs, sl)
		}
		b.Locations.ServiceLocations = locs

		channels := make([]Channel, 0, len(b.Channels))
		for _, ch := range b.Channels {
			members := ch.Members[:0:0]
			for _, m := range ch.Members {
				if m.Service == link {
					changed = true
					continue
				}
				members = append(members, m)
			}
			ch.Members = members
			channels = append(channels, ch)
		}
		b.Channels = channels
		r.Body = b
	}

	return r, changed
}
