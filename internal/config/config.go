// Package config provides YAML-based configuration loading and validation
// for the generation evaluator.
package config

// EvalConfig contains every knob of the simulation and scoring engine.
type EvalConfig struct {
	Physics   Physics   `yaml:"physics"`
	Obstacles Obstacles `yaml:"obstacles"`
	Playfield Playfield `yaml:"playfield"`
	Rewards   Rewards   `yaml:"rewards"`
	Run       Run       `yaml:"run"`
	Sprites   Sprites   `yaml:"sprites"`
}

// Physics defines the agent's vertical motion and cosmetic tilt.
type Physics struct {
	Gravity     float64 `yaml:"gravity"`      // Acceleration in d = v*t + 0.5*a*t^2
	MaxFall     float64 `yaml:"max_fall"`     // Per-tick displacement cap (terminal fall speed)
	RiseBoost   float64 `yaml:"rise_boost"`   // Extra upward displacement while rising
	JumpImpulse float64 `yaml:"jump_impulse"` // Velocity set by a jump (negative = up)
	MaxTiltUp   float64 `yaml:"max_tilt_up"`
	MaxTiltDown float64 `yaml:"max_tilt_down"`
	TiltRate    float64 `yaml:"tilt_rate"`   // Degrees per tick while falling
	RiseMargin  float64 `yaml:"rise_margin"` // Still counts as rising within this distance below the jump height
}

// Obstacles defines pipe geometry, generation range and motion.
type Obstacles struct {
	Gap       int `yaml:"gap"`        // Vertical opening between the two pieces
	GapMin    int `yaml:"gap_min"`    // Lowest gap top (inclusive)
	GapMax    int `yaml:"gap_max"`    // Highest gap top (exclusive)
	PipeSpeed int `yaml:"pipe_speed"` // Leftward movement per tick
	SpawnX    int `yaml:"spawn_x"`    // X of every newly appended pipe
	FirstX    int `yaml:"first_x"`    // X of the pipe present at tick zero
}

// Playfield defines the world boundaries and agent placement.
type Playfield struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Ground          float64 `yaml:"ground"`           // Agents at or below this line die
	Ceiling         float64 `yaml:"ceiling"`          // Agents above this line die
	GroundClearance float64 `yaml:"ground_clearance"` // Added to Y before the ground test
	AgentX          int     `yaml:"agent_x"`
	AgentY          float64 `yaml:"agent_y"`
}

// Rewards defines fitness accounting.
type Rewards struct {
	Survive         float64 `yaml:"survive"` // Granted every tick an agent is alive
	Gate            float64 `yaml:"gate"`    // Granted to every live agent when a pipe is passed
	Death           float64 `yaml:"death"`   // Subtracted per collision piece or boundary violation
	ActionThreshold float64 `yaml:"action_threshold"`
}

// Run defines termination bounds and execution options.
type Run struct {
	ScoreCap int   `yaml:"score_cap"` // Generation stops once score exceeds this
	MaxTicks int   `yaml:"max_ticks"` // Safety bound, 0 = unlimited
	Seed     int64 `yaml:"seed"`      // Base RNG seed for pipe generation
	Workers  int   `yaml:"workers"`   // Concurrent controller calls per tick, <= 1 = sequential
}

// Sprites defines the occupancy shapes used for collision.
type Sprites struct {
	BirdW       int `yaml:"bird_w"`
	BirdH       int `yaml:"bird_h"`
	PipeW       int `yaml:"pipe_w"`
	PipeH       int `yaml:"pipe_h"`
	CapH        int `yaml:"cap_h"`        // Height of the wide cap next to the gap
	CapOverhang int `yaml:"cap_overhang"` // How far the cap sticks out past the shaft on each side
}
