package flappy

import (
	"github.com/vovakirdan/neuroflap/internal/config"
)

// Bird is the physics state of one agent.
// Position is never clamped here; boundary deaths are decided by the loop.
type Bird struct {
	X      int     // Fixed horizontal position (left edge of the sprite)
	Y      float64 // Vertical position (top edge of the sprite), grows downward
	Vel    float64 // Velocity set by the last jump
	Tilt   float64 // Cosmetic rotation in degrees, positive = nose up
	Height float64 // Y at the last jump

	ticks int // Ticks since the last jump
	phys  config.Physics
}

// NewBird creates a bird at rest.
func NewBird(x int, y float64, phys config.Physics) Bird {
	return Bird{
		X:      x,
		Y:      y,
		Height: y,
		phys:   phys,
	}
}

// Jump applies the upward impulse and restarts the displacement curve,
// so every jump behaves the same regardless of how long the bird was falling.
func (b *Bird) Jump() {
	b.Vel = b.phys.JumpImpulse
	b.ticks = 0
	b.Height = b.Y
}

// Advance moves the bird by one tick and returns the applied displacement.
func (b *Bird) Advance() float64 {
	b.ticks++
	t := float64(b.ticks)
	d := b.Vel*t + 0.5*b.phys.Gravity*t*t

	if d >= b.phys.MaxFall {
		d = b.phys.MaxFall
	} else if d < 0 {
		d -= b.phys.RiseBoost
	}

	b.Y += d

	if d < 0 || b.Y < b.Height+b.phys.RiseMargin {
		if b.Tilt < b.phys.MaxTiltUp {
			b.Tilt = b.phys.MaxTiltUp
		}
	} else if b.Tilt > b.phys.MaxTiltDown {
		b.Tilt -= b.phys.TiltRate
		if b.Tilt < b.phys.MaxTiltDown {
			b.Tilt = b.phys.MaxTiltDown
		}
	}

	return d
}

// TicksSinceJump returns the displacement curve's time base.
func (b *Bird) TicksSinceJump() int {
	return b.ticks
}
