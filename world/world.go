// Package world holds the physical bodies of the satellite and robots.
//
// It stands in for the rendering/physics host: it places bodies at build time,
// answers position queries and moves robots when asked. Message handling never
// touches it directly.
package world

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swarm/comm"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/logging"
)

// MoveResult reports what happened to a robot during Advance.
type MoveResult struct {
	Arrived    bool // reached its steering target this step
	HitBarrier bool // was stopped by a ground barrier
}

// World owns the ECS world with every actor body.
type World struct {
	world *ecs.World
	cfg   *config.Config
	rng   *rand.Rand
	log   *slog.Logger

	robotMapper *ecs.Map5[
		components.Identity,
		components.Position,
		components.Motion,
		components.Body,
		components.Steering,
	]
	satMapper *ecs.Map2[components.Identity, components.Position]

	robotFilter *ecs.Filter2[components.Identity, components.Motion]

	posMap    *ecs.Map[components.Position]
	motionMap *ecs.Map[components.Motion]
	steerMap  *ecs.Map[components.Steering]
	bodyMap   *ecs.Map[components.Body]

	bodies map[comm.ActorID]ecs.Entity
	half   float32 // half ground length minus body radius
}

// New builds the ground, the satellite body and the robot spawn grid.
// It fails when the ground is degenerate or the spawn shape is unsupported;
// both are fatal for a run.
func New(cfg *config.Config, rng *rand.Rand, logger *slog.Logger) (*World, error) {
	if cfg.World.GroundLength <= 0 {
		return nil, fmt.Errorf("world: ground length must be positive, got %v", cfg.World.GroundLength)
	}
	if cfg.Robots.SpawnShape != config.SpawnSquare {
		return nil, fmt.Errorf("world: spawn shape must be %q, got %q", config.SpawnSquare, cfg.Robots.SpawnShape)
	}

	ew := ecs.NewWorld()
	w := &World{
		world: ew,
		cfg:   cfg,
		rng:   rng,
		log:   logging.Tagged(logger, logging.TagWorld),
		robotMapper: ecs.NewMap5[
			components.Identity,
			components.Position,
			components.Motion,
			components.Body,
			components.Steering,
		](ew),
		satMapper:   ecs.NewMap2[components.Identity, components.Position](ew),
		robotFilter: ecs.NewFilter2[components.Identity, components.Motion](ew),
		posMap:      ecs.NewMap[components.Position](ew),
		motionMap:   ecs.NewMap[components.Motion](ew),
		steerMap:    ecs.NewMap[components.Steering](ew),
		bodyMap:     ecs.NewMap[components.Body](ew),
		bodies:      make(map[comm.ActorID]ecs.Entity),
	}
	w.half = float32(cfg.World.GroundLength/2) - float32(cfg.Robots.BodyRadius)

	w.placeSatellite()
	w.placeRobots()

	w.log.Info("world built",
		"ground_length", cfg.World.GroundLength,
		"robots", len(w.bodies)-1,
	)
	return w, nil
}

func (w *World) placeSatellite() {
	id := components.Identity{ID: uint32(comm.Satellite), Kind: components.KindSatellite}
	pos := components.Position{Y: float32(w.cfg.Satellite.Altitude)}
	w.bodies[comm.Satellite] = w.satMapper.NewEntity(&id, &pos)
}

// placeRobots lays robots out on a square grid around the spawn centre.
// IDs run down the columns: id = side*i + j.
func (w *World) placeRobots() {
	rc := w.cfg.Robots
	side := w.cfg.Derived.RobotsPerSide
	cx, cz := float32(rc.SpawnCenter[0]), float32(rc.SpawnCenter[1])
	r := float32(rc.SpawnRadius)
	y := float32(rc.BodyHeight)

	if side == 1 {
		w.spawnRobot(0, cx, y, cz)
		return
	}

	spacing := r * 2 / float32(side-1)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			x := cx - r + float32(i)*spacing
			z := cz - r + float32(j)*spacing
			w.spawnRobot(comm.ActorID(side*i+j), x, y, z)
		}
	}
}

func (w *World) spawnRobot(id comm.ActorID, x, y, z float32) {
	ident := components.Identity{ID: uint32(id), Kind: components.KindRobot}
	pos := components.Position{X: x, Y: y, Z: z}
	motion := components.Motion{Heading: w.rng.Float32() * 2 * math.Pi}
	body := components.Body{
		Radius:     float32(w.cfg.Robots.BodyRadius),
		RadarRange: float32(w.cfg.Robots.RadarRange),
	}
	steer := components.Steering{}
	w.bodies[id] = w.robotMapper.NewEntity(&ident, &pos, &motion, &body, &steer)
}

// RobotIDs returns the robot IDs in ascending order.
func (w *World) RobotIDs() []comm.ActorID {
	ids := make([]comm.ActorID, 0, len(w.bodies))
	query := w.robotFilter.Query()
	for query.Next() {
		ident, _ := query.Get()
		ids = append(ids, comm.ActorID(ident.ID))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) entity(id comm.ActorID) (ecs.Entity, bool) {
	e, ok := w.bodies[id]
	if !ok || !w.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// Position returns the body position of id, or components.Zero if it has no body.
func (w *World) Position(id comm.ActorID) components.Position {
	e, ok := w.entity(id)
	if !ok {
		return components.Zero
	}
	return *w.posMap.Get(e)
}

// Motion returns the motion state of a robot.
func (w *World) Motion(id comm.ActorID) (components.Motion, bool) {
	e, ok := w.entity(id)
	if !ok || !w.motionMap.Has(e) {
		return components.Motion{}, false
	}
	return *w.motionMap.Get(e), true
}

// SetTarget makes robot id seek the ground point (x, z). Ignored for bodies without steering.
func (w *World) SetTarget(id comm.ActorID, x, z float32) {
	e, ok := w.entity(id)
	if !ok || !w.steerMap.Has(e) {
		return
	}
	*w.steerMap.Get(e) = components.Steering{TargetX: x, TargetZ: z, Active: true}
}

// ClearTarget returns robot id to wandering.
func (w *World) ClearTarget(id comm.ActorID) {
	e, ok := w.entity(id)
	if !ok || !w.steerMap.Has(e) {
		return
	}
	w.steerMap.Get(e).Active = false
}

// Advance moves robot id for dt seconds: seek its target if it has one,
// wander otherwise. Bodies never leave the fenced ground.
func (w *World) Advance(id comm.ActorID, dt float32) MoveResult {
	var res MoveResult
	e, ok := w.entity(id)
	if !ok || !w.motionMap.Has(e) {
		return res
	}

	pos := w.posMap.Get(e)
	motion := w.motionMap.Get(e)
	steer := w.steerMap.Get(e)
	maxSpeed := float32(w.cfg.Robots.MaxSpeed)

	if steer.Active {
		dist := pos.DistanceXZ(steer.TargetX, steer.TargetZ)
		if dist <= float32(w.cfg.Robots.ArriveDist) {
			motion.Speed = 0
			res.Arrived = true
			return res
		}
		motion.Heading = float32(math.Atan2(float64(steer.TargetZ-pos.Z), float64(steer.TargetX-pos.X)))
		motion.Speed = min(maxSpeed, dist/dt)
	} else {
		turn := (w.rng.Float32()*2 - 1) * float32(w.cfg.Robots.WanderTurn) * dt
		motion.Heading = normalizeAngle(motion.Heading + turn)
		motion.Speed = maxSpeed
	}

	sin, cos := math.Sincos(float64(motion.Heading))
	pos.X += float32(cos) * motion.Speed * dt
	pos.Z += float32(sin) * motion.Speed * dt

	// Reflect off the barriers.
	if pos.X > w.half || pos.X < -w.half {
		pos.X = clamp(pos.X, -w.half, w.half)
		motion.Heading = normalizeAngle(math.Pi - motion.Heading)
		res.HitBarrier = true
	}
	if pos.Z > w.half || pos.Z < -w.half {
		pos.Z = clamp(pos.Z, -w.half, w.half)
		motion.Heading = normalizeAngle(-motion.Heading)
		res.HitBarrier = true
	}

	return res
}

// RemoveBody deletes the body of id. Later position queries return the zero sentinel.
func (w *World) RemoveBody(id comm.ActorID) {
	e, ok := w.entity(id)
	if !ok {
		return
	}
	w.world.RemoveEntity(e)
	delete(w.bodies, id)
}

// HalfExtent returns the half-width of the walkable ground.
func (w *World) HalfExtent() float32 {
	return w.half
}

// normalizeAngle wraps angle to [-pi, pi].
func normalizeAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
