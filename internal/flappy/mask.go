package flappy

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/vovakirdan/neuroflap/internal/core"
)

// Mask is a per-pixel occupancy grid of a sprite.
// Collision is decided on occupied cells, not bounding boxes, because the
// bird and the pipe caps are not rectangular.
type Mask struct {
	w, h int
	bits *bitset.BitSet
}

// NewMask creates an empty mask of the given size.
func NewMask(w, h int) *Mask {
	w, h = core.Max(w, 0), core.Max(h, 0)
	return &Mask{
		w:    w,
		h:    h,
		bits: bitset.New(uint(w * h)),
	}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int {
	return m.w
}

// Height returns the mask height in pixels.
func (m *Mask) Height() int {
	return m.h
}

// Bounds returns the mask rectangle at the origin.
func (m *Mask) Bounds() core.Rect {
	return core.NewRect(0, 0, m.w, m.h)
}

// Set marks (x, y) as occupied. Out-of-bounds coordinates are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		return
	}
	m.bits.Set(uint(y*m.w + x))
}

// Get reports whether (x, y) is occupied. Out-of-bounds cells are empty.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		return false
	}
	return m.bits.Test(uint(y*m.w + x))
}

// Count returns the number of occupied cells.
func (m *Mask) Count() int {
	return int(m.bits.Count())
}

// FlipVertical returns a mirrored copy, top row last.
func (m *Mask) FlipVertical() *Mask {
	out := NewMask(m.w, m.h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.Get(x, y) {
				out.Set(x, m.h-1-y)
			}
		}
	}
	return out
}

// Overlap places other at offset (dx, dy) relative to m and returns the
// first shared occupied cell in m's coordinates, scanning rows top to bottom.
func (m *Mask) Overlap(other *Mask, dx, dy int) (x, y int, ok bool) {
	area := m.Bounds().Intersection(other.Bounds().Translate(dx, dy))
	if area.Empty() {
		return 0, 0, false
	}
	for y := area.Y; y < area.Bottom(); y++ {
		for x := area.X; x < area.Right(); x++ {
			if m.Get(x, y) && other.Get(x-dx, y-dy) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// Overlaps reports whether m and other share an occupied cell when other is
// placed at (dx, dy). a.Overlaps(b, dx, dy) == b.Overlaps(a, -dx, -dy).
func (m *Mask) Overlaps(other *Mask, dx, dy int) bool {
	_, _, ok := m.Overlap(other, dx, dy)
	return ok
}
