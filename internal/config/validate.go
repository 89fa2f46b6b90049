package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// Validate reports every non-finite or structurally impossible value.
// The returned error joins all problems found.
func (c EvalConfig) Validate() error {
	var errs []error

	finite := map[string]float64{
		"physics.gravity":            c.Physics.Gravity,
		"physics.max_fall":           c.Physics.MaxFall,
		"physics.rise_boost":         c.Physics.RiseBoost,
		"physics.jump_impulse":       c.Physics.JumpImpulse,
		"physics.max_tilt_up":        c.Physics.MaxTiltUp,
		"physics.max_tilt_down":      c.Physics.MaxTiltDown,
		"physics.tilt_rate":          c.Physics.TiltRate,
		"physics.rise_margin":        c.Physics.RiseMargin,
		"playfield.ground":           c.Playfield.Ground,
		"playfield.ceiling":          c.Playfield.Ceiling,
		"playfield.ground_clearance": c.Playfield.GroundClearance,
		"playfield.agent_y":          c.Playfield.AgentY,
		"rewards.survive":            c.Rewards.Survive,
		"rewards.gate":               c.Rewards.Gate,
		"rewards.death":              c.Rewards.Death,
		"rewards.action_threshold":   c.Rewards.ActionThreshold,
	}
	for _, name := range slices.Sorted(maps.Keys(finite)) {
		v := finite[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be finite, got %v", name, v))
		}
	}

	o := c.Obstacles
	if o.Gap <= 0 {
		errs = append(errs, fmt.Errorf("obstacles.gap must be positive, got %d", o.Gap))
	}
	if o.GapMax <= o.GapMin {
		errs = append(errs, fmt.Errorf("obstacles.gap_max (%d) must exceed gap_min (%d)", o.GapMax, o.GapMin))
	}
	if float64(o.GapMin) <= c.Playfield.Ceiling {
		errs = append(errs, fmt.Errorf("obstacles.gap_min (%d) must be greater than playfield.ceiling (%v) to keep the top piece on screen", o.GapMin, c.Playfield.Ceiling))
	}
	if float64(o.GapMax-1+o.Gap) >= c.Playfield.Ground {
		errs = append(errs, fmt.Errorf("obstacles.gap_max (%d) plus gap (%d) must keep the bottom piece above playfield.ground (%v)", o.GapMax, o.Gap, c.Playfield.Ground))
	}
	if o.PipeSpeed <= 0 {
		errs = append(errs, fmt.Errorf("obstacles.pipe_speed must be positive, got %d", o.PipeSpeed))
	}
	if o.SpawnX <= c.Playfield.AgentX {
		errs = append(errs, fmt.Errorf("obstacles.spawn_x (%d) must be ahead of playfield.agent_x (%d)", o.SpawnX, c.Playfield.AgentX))
	}

	if c.Playfield.Ground <= c.Playfield.Ceiling {
		errs = append(errs, fmt.Errorf("playfield.ground (%v) must be below ceiling (%v)", c.Playfield.Ground, c.Playfield.Ceiling))
	}

	s := c.Sprites
	if s.BirdW <= 0 || s.BirdH <= 0 || s.PipeW <= 0 || s.PipeH <= 0 {
		errs = append(errs, errors.New("sprites: all dimensions must be positive"))
	}
	if s.CapH < 0 || s.CapH > s.PipeH {
		errs = append(errs, fmt.Errorf("sprites.cap_h must be within [0, pipe_h], got %d", s.CapH))
	}
	if s.CapOverhang < 0 || 2*s.CapOverhang >= s.PipeW {
		errs = append(errs, fmt.Errorf("sprites.cap_overhang must leave a shaft, got %d", s.CapOverhang))
	}

	if c.Run.ScoreCap < 0 {
		errs = append(errs, fmt.Errorf("run.score_cap must not be negative, got %d", c.Run.ScoreCap))
	}
	if c.Run.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("run.max_ticks must not be negative, got %d", c.Run.MaxTicks))
	}

	return errors.Join(errs...)
}
