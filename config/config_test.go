package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Robots.SpawnShape != SpawnSquare {
		t.Errorf("spawn shape = %q, want %q", cfg.Robots.SpawnShape, SpawnSquare)
	}
	if cfg.Derived.NumRobots != 16 {
		t.Errorf("NumRobots = %d, want 16", cfg.Derived.NumRobots)
	}
	if cfg.Derived.DT32 <= 0 {
		t.Errorf("DT32 = %v, want > 0", cfg.Derived.DT32)
	}
	if cfg.Derived.HalfGround32 != 30 {
		t.Errorf("HalfGround32 = %v, want 30", cfg.Derived.HalfGround32)
	}
}

func TestRobotCountRoundsDownToSquare(t *testing.T) {
	tests := []struct {
		count    int
		wantSide int
		wantNum  int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{3, 1, 1},
		{4, 2, 4},
		{10, 3, 9},
		{16, 4, 16},
		{24, 4, 16},
	}

	for _, tt := range tests {
		cfg := &Config{Robots: RobotsConfig{Count: tt.count}}
		cfg.computeDerived()
		if cfg.Derived.RobotsPerSide != tt.wantSide || cfg.Derived.NumRobots != tt.wantNum {
			t.Errorf("count %d: side=%d num=%d, want side=%d num=%d",
				tt.count, cfg.Derived.RobotsPerSide, cfg.Derived.NumRobots, tt.wantSide, tt.wantNum)
		}
	}
}

func TestLoadOverlayKeepsUnsetDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := "robots:\n  count: 9\n  spawn_shape: \" Square \"\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Derived.NumRobots != 9 {
		t.Errorf("NumRobots = %d, want 9", cfg.Derived.NumRobots)
	}
	if cfg.Robots.SpawnShape != SpawnSquare {
		t.Errorf("spawn shape = %q, want normalized %q", cfg.Robots.SpawnShape, SpawnSquare)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Satellite.Altitude != 15 {
		t.Errorf("satellite altitude = %v, want default 15", cfg.Satellite.Altitude)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.GroundLength = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if reloaded.World.GroundLength != 42 {
		t.Errorf("ground length = %v, want 42", reloaded.World.GroundLength)
	}
}
