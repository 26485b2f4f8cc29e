package ai

import (
	"os"
	"path/filepath"
	"testing"
)

// TestParseProfiles tests YAML decoding and default filling.
func TestParseProfiles(t *testing.T) {
	data := []byte(`
profiles:
  - name: rusher
    steal_range: 90
    aggression: 0.9
  - name: sniper
    shoot_range: 550
    min_shot_quality: 0.7
    charge_min: 0.8
`)
	profiles, err := ParseProfiles(data)
	if err != nil {
		t.Fatalf("ParseProfiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}

	rusher := profiles["rusher"]
	if rusher.StealRange != 90 || rusher.Aggression != 0.9 {
		t.Errorf("rusher overrides lost: %+v", rusher)
	}
	// Omitted fields come from the default profile.
	d := DefaultProfile()
	if rusher.ShootRange != d.ShootRange || rusher.PressureDistance != d.PressureDistance {
		t.Errorf("rusher defaults not filled: %+v", rusher)
	}

	sniper := profiles["sniper"]
	if sniper.ChargeMin != 0.8 {
		t.Errorf("sniper charge_min = %f, want 0.8", sniper.ChargeMin)
	}
	if sniper.ChargeMax < sniper.ChargeMin {
		t.Errorf("charge_max %f below charge_min %f", sniper.ChargeMax, sniper.ChargeMin)
	}
}

// TestParseProfilesRejectsAnonymous tests that a nameless profile is an
// error.
func TestParseProfilesRejectsAnonymous(t *testing.T) {
	if _, err := ParseProfiles([]byte("profiles:\n  - steal_range: 90\n")); err == nil {
		t.Fatal("a profile without a name must not parse")
	}
}

// TestProfileStoreLookups tests name resolution and the unknown-name
// fallback.
func TestProfileStoreLookups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := "profiles:\n  - name: rusher\n    steal_range: 90\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewProfileStore(path)
	if err != nil {
		t.Fatalf("NewProfileStore: %v", err)
	}
	defer store.Close()

	if p := store.Get("rusher"); p.StealRange != 90 {
		t.Errorf("rusher steal range = %f, want 90", p.StealRange)
	}
	if p := store.Get("nobody"); p.Name != "balanced" {
		t.Errorf("unknown name resolved to %q, want the balanced default", p.Name)
	}

	names := store.Names()
	want := []string{"balanced", "rusher"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

// TestProfileStoreMissingFile tests that a missing path yields the
// default-only store.
func TestProfileStoreMissingFile(t *testing.T) {
	store, err := NewProfileStore(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("NewProfileStore: %v", err)
	}
	defer store.Close()

	if names := store.Names(); len(names) != 1 || names[0] != "balanced" {
		t.Errorf("names = %v, want just balanced", names)
	}
}
