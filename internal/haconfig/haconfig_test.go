package haconfig

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestNormalizeEnsuresHomeAssistantRoomAtHead(t *testing.T) {
	c := Default()
	c.Rooms = []Room{{ID: "Living Room!"}}
	c.Normalize()

	if len(c.Rooms) != 2 {
		t.Fatalf("Rooms = %#v, want 2 entries", c.Rooms)
	}
	if c.Rooms[0].ID != HomeAssistantRoomID {
		t.Errorf("Rooms[0].ID = %q, want %q", c.Rooms[0].ID, HomeAssistantRoomID)
	}
	if c.Rooms[1].ID != "living-room" {
		t.Errorf("Rooms[1].ID = %q, want living-room", c.Rooms[1].ID)
	}
}

func TestNormalizeForcesHiddenEntitiesInvisible(t *testing.T) {
	c := Default()
	c.HiddenEntityIDs = []string{"light.kitchen"}
	c.EntityPreferences = map[string]EntityPreference{
		"light.kitchen": {Alias: "Kitchen"},
	}
	c.Normalize()

	pref := c.EntityPreferences["light.kitchen"]
	if pref.Visible == nil || *pref.Visible {
		t.Errorf("hidden entity preference.Visible = %v, want false", pref.Visible)
	}
}

func TestNormalizeDropsSubstancelessPreferences(t *testing.T) {
	c := Default()
	c.EntityPreferences = map[string]EntityPreference{"light.empty": {}}
	c.Normalize()

	if _, ok := c.EntityPreferences["light.empty"]; ok {
		t.Error("substance-free preference survived Normalize")
	}
}

func TestShouldIncludePrecedence(t *testing.T) {
	c := Default()
	visible := true
	c.EntityPreferences = map[string]EntityPreference{
		"light.always": {Visible: &visible},
	}
	c.HiddenEntityIDs = []string{"light.always"}

	if !c.ShouldInclude("light.always", "Always", true, "") {
		t.Error("explicit visible=true preference should override hidden list")
	}
}

func TestShouldIncludeUnavailableExcluded(t *testing.T) {
	c := Default()
	c.IncludeUnavailable = false

	if c.ShouldInclude("light.gone", "Gone", false, "") {
		t.Error("unavailable entity with include_unavailable=false should be excluded")
	}
}

func TestShouldIncludeDefaultGate(t *testing.T) {
	c := Default()
	c.DefaultAddNewDevicesToHue = false
	if c.ShouldInclude("light.new", "New", true, "") {
		t.Error("new entity should not be included when default_add_new_devices_to_hue=false")
	}

	c.DefaultAddNewDevicesToHue = true
	if !c.ShouldInclude("light.new", "New", true, "") {
		t.Error("new entity should be included when default_add_new_devices_to_hue=true")
	}
}

func TestShouldIncludeIgnoredSensorKind(t *testing.T) {
	c := Default()
	c.DefaultAddNewDevicesToHue = true
	if c.ShouldInclude("binary_sensor.x", "X", true, "ignore") {
		t.Error("binary_sensor resolving to ignore kind should be excluded even when default-included")
	}
}

func TestEnsureRoomForAreaDisambiguates(t *testing.T) {
	c := Default()
	id1 := c.EnsureRoomForArea("Office")
	if id1 != "area-office" {
		t.Fatalf("first area id = %q, want area-office", id1)
	}

	c.Rooms = append(c.Rooms, Room{ID: "area-office-imported", SourceArea: "office (2nd floor)"})
	id2 := c.EnsureRoomForArea("office (2nd floor)")
	if id2 != "area-office-imported" {
		t.Errorf("existing source_area should be reused: got %q", id2)
	}
}

func TestEnsureRoomForAreaIgnoredRoutesToDefault(t *testing.T) {
	c := Default()
	c.IgnoredAreaNames = []string{"Attic"}
	if id := c.EnsureRoomForArea("Attic"); id != HomeAssistantRoomID {
		t.Errorf("ignored area should route to %q, got %q", HomeAssistantRoomID, id)
	}
}

func TestPatinaScoreScenarioF(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	installDate := now.AddDate(0, 0, -30)

	level := Score(installDate, 1000, now)
	if level != 18 {
		t.Errorf("Score = %d, want 18", level)
	}
	if StageFor(level) != StageFresh {
		t.Errorf("StageFor(%d) = %s, want Fresh", level, StageFor(level))
	}
}

func TestPatinaRecordEvent(t *testing.T) {
	var p Patina
	p.RecordEvent("toggle", "light.kitchen")
	p.RecordEvent("apply", "")

	if p.InteractionCount != 6 {
		t.Errorf("InteractionCount = %d, want 6", p.InteractionCount)
	}
	if p.InteractionsByKey["light.kitchen"] != 2 {
		t.Errorf("InteractionsByKey[light.kitchen] = %d, want 2", p.InteractionsByKey["light.kitchen"])
	}
}

func TestLoadV1BareConfigUpgrades(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/ha.yaml", []byte("include_unavailable: false\n"), 0o644)

	s, err := Load(fs, "/ha.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Config.IncludeUnavailable {
		t.Error("V1 config value not carried over")
	}
}

func TestLoadV2Document(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "config:\n  include_unavailable: false\npatina:\n  interaction_count: 5\n"
	_ = afero.WriteFile(fs, "/ha.yaml", []byte(content), 0o644)

	s, err := Load(fs, "/ha.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Patina.InteractionCount != 5 {
		t.Errorf("InteractionCount = %d, want 5", s.Patina.InteractionCount)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := Load(fs, "/ha.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Config.Rooms = []Room{{ID: "Kitchen!!"}}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(fs, "/ha.yaml")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	found := false
	for _, r := range reloaded.Config.Rooms {
		if r.ID == "kitchen" {
			found = true
		}
	}
	if !found {
		t.Errorf("sanitized room id not found after round trip: %#v", reloaded.Config.Rooms)
	}
}
