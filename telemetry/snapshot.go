package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the observable swarm state at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	GroundLength float64 `json:"ground_length"`

	Tick   int32 `json:"tick"`
	Paused bool  `json:"paused"`

	Satellite SatelliteState `json:"satellite"`
	Robots    []RobotState   `json:"robots"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// SatelliteState is the coordinator part of a snapshot.
type SatelliteState struct {
	Active            []string `json:"active"`
	BuildPhase        string   `json:"build_phase,omitempty"`
	Blueprint         string   `json:"blueprint,omitempty"`
	Confirmations     int      `json:"confirmations"`
	ConstructionPhase string   `json:"construction_phase,omitempty"`
	Progress          int      `json:"progress"`
	ForagingMode      string   `json:"foraging_mode,omitempty"`
	Sightings         int      `json:"sightings"`
	Observed          int      `json:"observed"`
	InboxLen          int      `json:"inbox_len"`
}

// RobotState is one robot in a snapshot.
type RobotState struct {
	ID           uint32         `json:"id"`
	X            float32        `json:"x"`
	Y            float32        `json:"y"`
	Z            float32        `json:"z"`
	Constructing bool           `json:"constructing"`
	Reports      int            `json:"reports"`
	Collisions   int            `json:"collisions"`
	Received     map[string]int `json:"received,omitempty"`
	InboxLen     int            `json:"inbox_len"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
