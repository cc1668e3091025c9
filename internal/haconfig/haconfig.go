// Package haconfig is the HA UI Config Store (spec.md §4.7): the
// persisted document describing room layout, per-entity visibility
// preferences, area-to-room auto-mapping, and the "patina" usage score
// surfaced in the bundled UI (out of scope here, but this is its backing
// store).
package haconfig

import (
	"regexp"
	"strconv"
	"strings"
)

// EntityPreference is a user override for one HA entity.
type EntityPreference struct {
	Visible         *bool  `yaml:"visible,omitempty"`
	RoomID          string `yaml:"room_id,omitempty"`
	Alias           string `yaml:"alias,omitempty"`
	SensorKind      string `yaml:"sensor_kind,omitempty"`
	SensorEnabled   *bool  `yaml:"sensor_enabled,omitempty"`
	SwitchMode      string `yaml:"switch_mode,omitempty"`
	LightArchetype  string `yaml:"light_archetype,omitempty"`
}

// hasSubstance reports whether p carries anything worth keeping — used by
// Normalize to drop preferences left entirely empty by the UI.
func (p EntityPreference) hasSubstance() bool {
	return p.Visible != nil || p.RoomID != "" || p.Alias != "" || p.SensorKind != "" ||
		p.SensorEnabled != nil || p.SwitchMode != "" || p.LightArchetype != ""
}

// Room is one user- or auto-created grouping entities can be assigned to.
type Room struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	SourceArea   string `yaml:"source_area,omitempty"`
	AutoCreated  bool   `yaml:"auto_created,omitempty"`
}

// HomeAssistantRoomID is the fixed id of the always-present default room.
const HomeAssistantRoomID = "home-assistant"

// Patina is the usage-derived "how lived-in is this install" state.
type Patina struct {
	InstallDate        string           `yaml:"install_date"`
	InteractionCount   int              `yaml:"interaction_count"`
	InteractionsByKey  map[string]int   `yaml:"interactions_by_key,omitempty"`
}

// patinaWeights are the per-event-kind increments to InteractionCount
// (spec.md §4.7's "Patina score").
var patinaWeights = map[string]int{
	"toggle":  2,
	"apply":   4,
	"sync":    3,
	"reset":   5,
	"default": 1,
}

// Stage is the three-bucket patina classification shown in the UI.
type Stage string

const (
	StageFresh Stage = "Fresh"
	StageUsed  Stage = "Used"
	StageLoved Stage = "Loved"
)

// Config is the whole persisted HA UI document.
type Config struct {
	HiddenEntityIDs            []string                      `yaml:"hidden_entity_ids,omitempty"`
	ExcludeEntityIDs           []string                      `yaml:"exclude_entity_ids,omitempty"`
	ExcludeNamePatterns        []string                      `yaml:"exclude_name_patterns,omitempty"`
	IncludeUnavailable         bool                          `yaml:"include_unavailable"`
	Rooms                      []Room                        `yaml:"rooms,omitempty"`
	EntityPreferences          map[string]EntityPreference   `yaml:"entity_preferences,omitempty"`
	IgnoredAreaNames           []string                      `yaml:"ignored_area_names,omitempty"`
	DefaultAddNewDevicesToHue  bool                          `yaml:"default_add_new_devices_to_hue"`
	SyncHassAreasToRooms       bool                          `yaml:"sync_hass_areas_to_rooms"`
	FakeCloudMode              bool                          `yaml:"fake_cloud_mode,omitempty"`
	FakeCloudCustom            string                        `yaml:"fake_cloud_custom,omitempty"`
	HassTimezone               string                        `yaml:"hass_timezone,omitempty"`
	HassLat                    float64                       `yaml:"hass_lat,omitempty"`
	HassLong                   float64                       `yaml:"hass_long,omitempty"`
}

// Default returns a Config with the spec's documented field defaults.
func Default() Config {
	return Config{
		IncludeUnavailable:        true,
		DefaultAddNewDevicesToHue: false,
		SyncHassAreasToRooms:      true,
	}
}

// Document is the on-disk V2 shape: config plus patina side by side.
type Document struct {
	Config Config `yaml:"config"`
	Patina Patina `yaml:"patina"`
}

var (
	roomIDDisallowed = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	roomIDSeparators = regexp.MustCompile(`[\s_-]+`)
)

// sanitizeRoomID lowercases s, keeps only alphanumerics (collapsing every
// run of whitespace/underscore/dash to a single dash), and trims leading
// and trailing dashes.
func sanitizeRoomID(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	kept := roomIDDisallowed.ReplaceAllString(lower, "")
	dashed := roomIDSeparators.ReplaceAllString(kept, "-")
	return strings.Trim(dashed, "-")
}

// Normalize applies every invariant spec.md §4.7 requires after a
// mutation and before a save: trims/drops empties, sanitizes and
// deduplicates room ids, ensures the home-assistant room exists at the
// head of the list, forces hidden/excluded entities to invisible, and
// drops substance-free preferences.
func (c *Config) Normalize() {
	c.HiddenEntityIDs = trimNonEmpty(c.HiddenEntityIDs)
	c.ExcludeEntityIDs = trimNonEmpty(c.ExcludeEntityIDs)
	c.ExcludeNamePatterns = trimNonEmpty(c.ExcludeNamePatterns)
	c.IgnoredAreaNames = trimNonEmpty(c.IgnoredAreaNames)

	seen := make(map[string]bool, len(c.Rooms)+1)
	rooms := make([]Room, 0, len(c.Rooms)+1)
	for _, r := range c.Rooms {
		id := sanitizeRoomID(r.ID)
		if id == "" {
			id = sanitizeRoomID(r.Name)
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		r.ID = id
		rooms = append(rooms, r)
	}
	if !seen[HomeAssistantRoomID] {
		rooms = append([]Room{{ID: HomeAssistantRoomID, Name: "Home Assistant"}}, rooms...)
	} else {
		rooms = moveToFront(rooms, HomeAssistantRoomID)
	}
	c.Rooms = rooms

	validRooms := make(map[string]bool, len(c.Rooms))
	for _, r := range c.Rooms {
		validRooms[r.ID] = true
	}

	forceHidden := make(map[string]bool, len(c.HiddenEntityIDs)+len(c.ExcludeEntityIDs))
	for _, id := range c.HiddenEntityIDs {
		forceHidden[id] = true
	}
	for _, id := range c.ExcludeEntityIDs {
		forceHidden[id] = true
	}

	for id, pref := range c.EntityPreferences {
		if pref.RoomID != "" && !validRooms[pref.RoomID] {
			pref.RoomID = ""
		}
		if forceHidden[id] {
			falseVal := false
			pref.Visible = &falseVal
		}
		if !pref.hasSubstance() {
			delete(c.EntityPreferences, id)
			continue
		}
		c.EntityPreferences[id] = pref
	}
}

func trimNonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		t := strings.TrimSpace(s)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func moveToFront(rooms []Room, id string) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if r.ID == id {
			out = append([]Room{r}, out...)
		} else {
			out = append(out, r)
		}
	}
	return out
}

// ShouldInclude is the inclusion predicate of spec.md §4.7. sensorKind is
// the effective resolved sensor kind for a binary_sensor entity (empty
// for lights/switches). An explicit visibility preference decides before
// the hidden, excluded and name-pattern checks; "ignore" excludes an
// entity only when DefaultAddNewDevicesToHue would otherwise include it.
func (c Config) ShouldInclude(entityID, name string, available bool, sensorKind string) bool {
	if !available && !c.IncludeUnavailable {
		return false
	}

	if pref, ok := c.EntityPreferences[entityID]; ok && pref.Visible != nil {
		return *pref.Visible
	}

	for _, hidden := range c.HiddenEntityIDs {
		if hidden == entityID {
			return false
		}
	}
	for _, excluded := range c.ExcludeEntityIDs {
		if excluded == entityID {
			return false
		}
	}

	lowerID := strings.ToLower(entityID)
	lowerName := strings.ToLower(name)
	for _, pattern := range c.ExcludeNamePatterns {
		p := strings.ToLower(pattern)
		if p == "" {
			continue
		}
		if strings.Contains(lowerID, p) || strings.Contains(lowerName, p) {
			return false
		}
	}

	included := c.DefaultAddNewDevicesToHue
	if included && sensorKind == "ignore" {
		return false
	}
	return included
}

// EnsureRoomForArea implements ensure_room_for_area: resolves an HA area
// name to a room id, creating an auto_created Room keyed "area-<slug>" on
// first use (disambiguated with "-2", "-3", … on collision), or routing
// to the default home-assistant room if the area is ignored.
func (c *Config) EnsureRoomForArea(name string) string {
	for _, ignored := range c.IgnoredAreaNames {
		if strings.EqualFold(ignored, name) {
			return HomeAssistantRoomID
		}
	}

	for _, r := range c.Rooms {
		if r.SourceArea == name {
			return r.ID
		}
	}

	base := "area-" + sanitizeRoomID(name)
	id := base
	taken := make(map[string]bool, len(c.Rooms))
	for _, r := range c.Rooms {
		taken[r.ID] = true
	}
	for n := 2; taken[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}

	c.Rooms = append(c.Rooms, Room{ID: id, Name: name, SourceArea: name, AutoCreated: true})
	return id
}
