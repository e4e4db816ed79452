// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Spawn shapes understood by the world builder.
const (
	SpawnSquare = "square"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Robots    RobotsConfig    `yaml:"robots"`
	Satellite SatelliteConfig `yaml:"satellite"`
	Comm      CommConfig      `yaml:"comm"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Console   ConsoleConfig   `yaml:"console"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the ground dimensions.
// The ground is a square of side GroundLength centred on the origin, fenced by barriers.
type WorldConfig struct {
	GroundLength float64 `yaml:"ground_length"`
	BarrierWidth float64 `yaml:"barrier_width"`
}

// RobotsConfig holds mobile agent spawn and movement parameters.
type RobotsConfig struct {
	Count       int        `yaml:"count"`        // Requested robots; square spawn rounds down to a perfect square
	SpawnShape  string     `yaml:"spawn_shape"`  // Only "square" is supported
	SpawnCenter [2]float64 `yaml:"spawn_center"` // Ground-plane (x, z)
	SpawnRadius float64    `yaml:"spawn_radius"` // Half-width of the spawn grid
	BodyHeight  float64    `yaml:"body_height"`  // Y coordinate of robot bodies
	BodyRadius  float64    `yaml:"body_radius"`
	RadarRange  float64    `yaml:"radar_range"`
	MaxSpeed    float64    `yaml:"max_speed"`    // Units per second
	WanderTurn  float64    `yaml:"wander_turn"`  // Max heading change per second while wandering (radians)
	ArriveDist  float64    `yaml:"arrive_dist"`  // Distance at which a target counts as reached
	ReportEvery int        `yaml:"report_every"` // Ticks between construction progress reports
}

// SatelliteConfig holds coordinator body parameters.
type SatelliteConfig struct {
	Altitude float64 `yaml:"altitude"`
}

// CommConfig holds message bus parameters.
type CommConfig struct {
	ShowInConsole     bool    `yaml:"show_in_console"`    // Log every delivered message
	ShowIndicators    bool    `yaml:"show_indicators"`    // Emit visual message indicators
	IndicatorDuration float64 `yaml:"indicator_duration"` // Seconds an indicator stays visible
}

// PhysicsConfig holds simulation timing parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// LoggingConfig holds slog handler settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// ConsoleConfig holds operator console settings.
type ConsoleConfig struct {
	StartupCommands []string `yaml:"startup_commands"` // Queued before the first tick
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32          float32 // Physics.DT as float32
	NumRobots     int     // Robots actually spawned (square spawn: floor(sqrt(count))^2)
	RobotsPerSide int     // floor(sqrt(count))
	HalfGround32  float32 // GroundLength/2 as float32
	ScreenW32     float32 // Screen.Width as float32
	ScreenH32     float32 // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.HalfGround32 = float32(c.World.GroundLength / 2)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Robots.SpawnShape = strings.ToLower(strings.TrimSpace(c.Robots.SpawnShape))

	side := 0
	if c.Robots.Count > 0 {
		side = int(math.Sqrt(float64(c.Robots.Count)))
	}
	c.Derived.RobotsPerSide = side
	c.Derived.NumRobots = side * side
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
