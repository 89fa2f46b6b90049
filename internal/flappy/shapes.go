package flappy

import (
	"math"
	"sync"

	"github.com/vovakirdan/neuroflap/internal/config"
)

// Shapes holds the occupancy masks of every sprite in the simulation.
type Shapes struct {
	Bird       *Mask
	PipeBottom *Mask // Cap on the top rows, facing the gap
	PipeTop    *Mask // Vertical mirror of PipeBottom
}

var shapeCache sync.Map // config.Sprites -> *Shapes

// ShapesFor returns the masks for the given sprite sizes.
// Masks are built once per distinct configuration and shared read-only.
func ShapesFor(s config.Sprites) *Shapes {
	if v, ok := shapeCache.Load(s); ok {
		return v.(*Shapes)
	}
	bottom := pipeMask(s.PipeW, s.PipeH, s.CapH, s.CapOverhang)
	shapes := &Shapes{
		Bird:       birdMask(s.BirdW, s.BirdH),
		PipeBottom: bottom,
		PipeTop:    bottom.FlipVertical(),
	}
	v, _ := shapeCache.LoadOrStore(s, shapes)
	return v.(*Shapes)
}

// birdMask is an ellipse inscribed in the sprite box.
func birdMask(w, h int) *Mask {
	m := NewMask(w, h)
	rx, ry := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := (float64(x) + 0.5 - rx) / rx
			ny := (float64(y) + 0.5 - ry) / ry
			if nx*nx+ny*ny <= 1 {
				m.Set(x, y)
			}
		}
	}
	return m
}

// pipeMask is a full-width cap of capH rows over a shaft inset by overhang.
func pipeMask(w, h, capH, overhang int) *Mask {
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		x0, x1 := overhang, w-overhang
		if y < capH {
			x0, x1 = 0, w
		}
		for x := x0; x < x1; x++ {
			m.Set(x, y)
		}
	}
	return m
}

// Collide returns how many pieces of p the bird overlaps (0, 1 or 2).
// The bird sprite sits at (b.X, round(b.Y)); the top piece at (p.X, p.TopY)
// and the bottom piece at (p.X, p.GapBottom).
func (s *Shapes) Collide(b *Bird, p *Pipe) int {
	by := int(math.RoundToEven(b.Y))
	birdRect := s.Bird.Bounds().Translate(b.X, by)

	pieces := [2]struct {
		mask *Mask
		x, y int
	}{
		{s.PipeTop, p.X, p.TopY},
		{s.PipeBottom, p.X, p.GapBottom},
	}

	hits := 0
	for _, piece := range pieces {
		if !birdRect.Intersects(piece.mask.Bounds().Translate(piece.x, piece.y)) {
			continue
		}
		if s.Bird.Overlaps(piece.mask, piece.x-b.X, piece.y-by) {
			hits++
		}
	}
	return hits
}
