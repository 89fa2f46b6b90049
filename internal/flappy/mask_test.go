package flappy

import (
	"testing"

	"github.com/vovakirdan/neuroflap/internal/config"
)

func squareMask(n int) *Mask {
	m := NewMask(n, n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.Set(x, y)
		}
	}
	return m
}

func TestMaskSetGet(t *testing.T) {
	m := NewMask(4, 3)
	m.Set(1, 2)
	m.Set(-1, 0) // ignored
	m.Set(4, 0)  // ignored

	if !m.Get(1, 2) || m.Get(2, 1) {
		t.Error("Get() does not match Set()")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, expected 1", m.Count())
	}
	if m.Get(-1, 0) || m.Get(0, 3) {
		t.Error("out of bounds cells should be empty")
	}
}

func TestMaskFlipVertical(t *testing.T) {
	m := NewMask(2, 3)
	m.Set(0, 0)
	f := m.FlipVertical()
	if !f.Get(0, 2) || f.Get(0, 0) {
		t.Error("FlipVertical() should move row 0 to the last row")
	}
}

func TestMaskOverlap(t *testing.T) {
	a := squareMask(4)
	b := squareMask(4)

	tests := []struct {
		name   string
		dx, dy int
		want   bool
		x, y   int
	}{
		{"same place", 0, 0, true, 0, 0},
		{"corner overlap", 3, 3, true, 3, 3},
		{"touching right", 4, 0, false, 0, 0},
		{"touching below", 0, 4, false, 0, 0},
		{"far away", 100, -100, false, 0, 0},
		{"negative offset", -2, -1, true, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, ok := a.Overlap(b, tc.dx, tc.dy)
			if ok != tc.want {
				t.Fatalf("Overlap() ok = %v, expected %v", ok, tc.want)
			}
			if ok && (x != tc.x || y != tc.y) {
				t.Errorf("Overlap() point = (%d, %d), expected (%d, %d)", x, y, tc.x, tc.y)
			}
		})
	}
}

func TestMaskOverlapSymmetric(t *testing.T) {
	shapes := ShapesFor(config.DefaultEvalConfig().Sprites)
	bird, pipe := shapes.Bird, shapes.PipeTop

	for dy := -700; dy <= 100; dy += 7 {
		for dx := -120; dx <= 80; dx += 3 {
			ab := bird.Overlaps(pipe, dx, dy)
			ba := pipe.Overlaps(bird, -dx, -dy)
			if ab != ba {
				t.Fatalf("asymmetric at (%d, %d): %v vs %v", dx, dy, ab, ba)
			}
			if ab != bird.Overlaps(pipe, dx, dy) {
				t.Fatalf("non-deterministic at (%d, %d)", dx, dy)
			}
		}
	}
}

func TestShapesNotRectangular(t *testing.T) {
	shapes := ShapesFor(config.DefaultEvalConfig().Sprites)

	if shapes.Bird.Count() >= shapes.Bird.Width()*shapes.Bird.Height() {
		t.Error("bird mask should not fill its bounding box")
	}
	if shapes.Bird.Get(0, 0) {
		t.Error("bird mask corners should be empty")
	}
	if !shapes.PipeBottom.Get(0, 0) || shapes.PipeBottom.Get(0, 100) {
		t.Error("bottom pipe should have a full-width cap and an inset shaft")
	}
	if !shapes.PipeTop.Get(0, shapes.PipeTop.Height()-1) {
		t.Error("top pipe cap should face the gap")
	}
	if ShapesFor(config.DefaultEvalConfig().Sprites) != shapes {
		t.Error("ShapesFor() should cache per sprite configuration")
	}
}

func TestCollide(t *testing.T) {
	cfg := config.DefaultEvalConfig()
	shapes := ShapesFor(cfg.Sprites)
	pipe := Pipe{X: 230, GapTop: 300, GapBottom: 500, TopY: 300 - cfg.Sprites.PipeH}

	tests := []struct {
		name string
		y    float64
		x    int
		want int
	}{
		{"centered in gap", 376, 230, 0},
		{"into bottom piece", 470, 230, 1},
		{"into top piece", 280, 230, 1},
		{"before the pipe", 470, 100, 0},
		{"past the pipe", 280, 340, 0},
		// Bounding boxes share a 3x2 corner that the ellipse leaves empty
		{"bounding box only", 454, 230 + 104 - 3, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBird(tc.x, tc.y, cfg.Physics)
			if got := shapes.Collide(&b, &pipe); got != tc.want {
				t.Errorf("Collide() = %d, expected %d", got, tc.want)
			}
		})
	}
}

func TestCollideBothPieces(t *testing.T) {
	cfg := config.DefaultEvalConfig()
	shapes := ShapesFor(cfg.Sprites)
	pipe := Pipe{X: 230, GapTop: 370, GapBottom: 380, TopY: 370 - cfg.Sprites.PipeH}

	b := NewBird(230, 350, cfg.Physics)
	if got := shapes.Collide(&b, &pipe); got != 2 {
		t.Errorf("Collide() = %d, expected 2 for a bird spanning a tiny gap", got)
	}
}
