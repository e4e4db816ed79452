package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:      SnapshotVersion,
		RNGSeed:      42,
		GroundLength: 60,
		Tick:         1000,
		Satellite: SatelliteState{
			Active:            []string{"construction", "foraging"},
			ConstructionPhase: "running",
			Progress:          7,
			ForagingMode:      "patrol",
			Observed:          3,
		},
		Robots: []RobotState{
			{ID: 0, X: 1, Y: 0.25, Z: -2, Constructing: true, Reports: 4, Received: map[string]int{"construction": 1}},
			{ID: 1, X: -3, Y: 0.25, Z: 5, Collisions: 2},
		},
		Bookmark: &Bookmark{Type: BookmarkDropSpike, Tick: 1000, Description: "test"},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if filepath.Base(path) != "snapshot_1000_drop_spike.json" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(loaded, snapshot) {
		t.Errorf("loaded snapshot differs:\n got %+v\nwant %+v", loaded, snapshot)
	}
}

func TestSnapshotFileNameWithoutBookmark(t *testing.T) {
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 5}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "snapshot_5.json" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}
}

func TestLoadSnapshotRejectsOtherVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	data, _ := json.Marshal(Snapshot{Version: SnapshotVersion + 1})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
