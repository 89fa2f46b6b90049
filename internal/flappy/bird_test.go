package flappy

import (
	"math"
	"testing"

	"github.com/vovakirdan/neuroflap/internal/config"
)

func testPhysics() config.Physics {
	return config.DefaultEvalConfig().Physics
}

func TestBirdFreeFall(t *testing.T) {
	b := NewBird(230, 350, testPhysics())

	// d = 1.5*t^2 capped at 16
	expected := []float64{1.5, 6, 13.5, 16, 16, 16}
	y := 350.0
	for i, want := range expected {
		d := b.Advance()
		if d != want {
			t.Fatalf("tick %d: displacement = %v, expected %v", i+1, d, want)
		}
		y += want
		if b.Y != y {
			t.Fatalf("tick %d: Y = %v, expected %v", i+1, b.Y, y)
		}
	}
	if b.TicksSinceJump() != len(expected) {
		t.Errorf("TicksSinceJump() = %d, expected %d", b.TicksSinceJump(), len(expected))
	}
}

func TestBirdJumpResetsCurve(t *testing.T) {
	b := NewBird(230, 350, testPhysics())
	for i := 0; i < 10; i++ {
		b.Advance()
	}

	b.Jump()
	if b.Vel != -10.5 || b.TicksSinceJump() != 0 || b.Height != b.Y {
		t.Fatalf("Jump() left vel=%v ticks=%d height=%v y=%v", b.Vel, b.TicksSinceJump(), b.Height, b.Y)
	}

	// -10.5 + 1.5 = -9, minus the rise boost
	before := b.Y
	if d := b.Advance(); d != -11 {
		t.Errorf("first tick after jump: displacement = %v, expected -11", d)
	}
	if b.Y != before-11 {
		t.Errorf("Y = %v, expected %v", b.Y, before-11)
	}

	// A second bird jumping from rest moves identically
	other := NewBird(230, before, testPhysics())
	other.Jump()
	other.Advance()
	if other.Y != b.Y {
		t.Errorf("jump should not depend on fall history: %v vs %v", other.Y, b.Y)
	}
}

func TestBirdTilt(t *testing.T) {
	b := NewBird(230, 350, testPhysics())
	b.Jump()
	b.Advance()
	if b.Tilt != 25 {
		t.Fatalf("rising tilt = %v, expected 25", b.Tilt)
	}

	// Fall long enough to leave the rise margin and reach the floor angle
	for i := 0; i < 40; i++ {
		b.Advance()
	}
	if b.Tilt != -90 {
		t.Errorf("falling tilt = %v, expected -90", b.Tilt)
	}
}

func TestBirdPositionNotClamped(t *testing.T) {
	b := NewBird(230, 5, testPhysics())
	b.Jump()
	b.Advance()
	if b.Y >= 0 {
		t.Errorf("physics must not clamp at the ceiling, Y = %v", b.Y)
	}

	b = NewBird(230, 2000, testPhysics())
	b.Advance()
	if math.IsNaN(b.Y) || b.Y <= 2000 {
		t.Errorf("physics must not clamp at the ground, Y = %v", b.Y)
	}
}
