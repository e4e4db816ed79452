package world

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/logging"
)

func testConfig(t *testing.T, count int) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := fmt.Sprintf("robots:\n  count: %d\n  spawn_center: [1, -1]\n  spawn_radius: 4\n", count)
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestWorld(t *testing.T, count int) *World {
	t.Helper()
	w, err := New(testConfig(t, count), rand.New(rand.NewSource(1)), logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestSquareSpawnGrid(t *testing.T) {
	w := newTestWorld(t, 10) // rounds down to 3x3

	ids := w.RobotIDs()
	if len(ids) != 9 {
		t.Fatalf("robots = %d, want 9", len(ids))
	}
	for i, id := range ids {
		if id != comm.ActorID(i) {
			t.Fatalf("ids not dense from 0: %v", ids)
		}
	}

	// spacing = 2*4/(3-1) = 4; id = 3*i + j
	tests := []struct {
		id   comm.ActorID
		x, z float32
	}{
		{0, -3, -5},
		{1, -3, -1},
		{3, 1, -5},
		{4, 1, -1},
		{8, 5, 3},
	}
	for _, tt := range tests {
		p := w.Position(tt.id)
		if p.X != tt.x || p.Z != tt.z {
			t.Errorf("robot %d at (%v, %v), want (%v, %v)", tt.id, p.X, p.Z, tt.x, tt.z)
		}
	}
}

func TestSingleRobotSpawnsAtCenter(t *testing.T) {
	w := newTestWorld(t, 3)
	ids := w.RobotIDs()
	if len(ids) != 1 {
		t.Fatalf("robots = %d, want 1", len(ids))
	}
	p := w.Position(0)
	if p.X != 1 || p.Z != -1 {
		t.Errorf("single robot at (%v, %v), want (1, -1)", p.X, p.Z)
	}
}

func TestSatelliteBody(t *testing.T) {
	w := newTestWorld(t, 4)
	p := w.Position(comm.Satellite)
	if p.Y != 15 || p.X != 0 || p.Z != 0 {
		t.Errorf("satellite at %+v, want (0, 15, 0)", p)
	}
	if _, ok := w.Motion(comm.Satellite); ok {
		t.Error("satellite should not have motion")
	}
}

func TestPositionZeroSentinel(t *testing.T) {
	w := newTestWorld(t, 4)

	if p := w.Position(42); p != components.Zero {
		t.Errorf("unknown actor position = %+v, want zero", p)
	}

	w.RemoveBody(2)
	if _, ok := w.Motion(2); ok {
		t.Error("motion still present after RemoveBody")
	}
	if p := w.Position(2); p != components.Zero {
		t.Errorf("removed body position = %+v, want zero", p)
	}
	if res := w.Advance(2, 0.1); res != (MoveResult{}) {
		t.Errorf("Advance on removed body = %+v", res)
	}
	if len(w.RobotIDs()) != 3 {
		t.Errorf("RobotIDs after removal = %v", w.RobotIDs())
	}
}

func TestSeekTargetArrives(t *testing.T) {
	w := newTestWorld(t, 1)
	w.SetTarget(0, 5, -1)

	arrived := false
	for i := 0; i < 1000 && !arrived; i++ {
		arrived = w.Advance(0, 0.05).Arrived
	}
	if !arrived {
		t.Fatalf("robot never arrived, at %+v", w.Position(0))
	}
	if d := w.Position(0).DistanceXZ(5, -1); d > 0.5 {
		t.Errorf("arrived %v away from target", d)
	}

	w.ClearTarget(0)
	before := w.Position(0)
	w.Advance(0, 0.1)
	if w.Position(0) == before {
		t.Error("robot did not wander after ClearTarget")
	}
}

func TestWanderStaysInsideBarriers(t *testing.T) {
	w := newTestWorld(t, 16)
	hit := false
	for step := 0; step < 5000; step++ {
		for _, id := range w.RobotIDs() {
			if w.Advance(id, 0.1).HitBarrier {
				hit = true
			}
			p := w.Position(id)
			if p.X > w.HalfExtent() || p.X < -w.HalfExtent() || p.Z > w.HalfExtent() || p.Z < -w.HalfExtent() {
				t.Fatalf("robot %d escaped to %+v", id, p)
			}
		}
	}
	if !hit {
		t.Error("expected at least one barrier contact over a long wander")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero ground", func(c *config.Config) { c.World.GroundLength = 0 }},
		{"negative ground", func(c *config.Config) { c.World.GroundLength = -5 }},
		{"circle spawn", func(c *config.Config) { c.Robots.SpawnShape = "circle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, 4)
			tt.mutate(cfg)
			if _, err := New(cfg, rand.New(rand.NewSource(1)), logging.Discard()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
