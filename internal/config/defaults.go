package config

import (
	_ "embed"
)

//go:embed defaults/eval.yaml
var defaultEvalYAML []byte

// DefaultEvalConfig returns the default evaluation configuration.
// It mirrors defaults/eval.yaml and is used when the embedded file cannot be parsed.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Physics: Physics{
			Gravity:     3.0,
			MaxFall:     16,
			RiseBoost:   2,
			JumpImpulse: -10.5,
			MaxTiltUp:   25,
			MaxTiltDown: -90,
			TiltRate:    20,
			RiseMargin:  50,
		},
		Obstacles: Obstacles{
			Gap:       200,
			GapMin:    50,
			GapMax:    450,
			PipeSpeed: 5,
			SpawnX:    600,
			FirstX:    600,
		},
		Playfield: Playfield{
			Width:           500,
			Height:          800,
			Ground:          730,
			Ceiling:         0,
			GroundClearance: 68,
			AgentX:          230,
			AgentY:          350,
		},
		Rewards: Rewards{
			Survive:         0.1,
			Gate:            5,
			Death:           1,
			ActionThreshold: 0.5,
		},
		Run: Run{
			ScoreCap: 100,
			MaxTicks: 100000,
			Seed:     0,
			Workers:  1,
		},
		Sprites: Sprites{
			BirdW:       68,
			BirdH:       48,
			PipeW:       104,
			PipeH:       640,
			CapH:        48,
			CapOverhang: 4,
		},
	}
}
