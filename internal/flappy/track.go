package flappy

import (
	"math/rand"

	"github.com/vovakirdan/neuroflap/internal/config"
)

// Track is the ordered sequence of pipes shared by every agent of a generation.
// Pipes only move left and new ones are appended at the spawn offset, so
// slice order is position order.
type Track struct {
	pipes  []Pipe
	rng    *rand.Rand
	obs    config.Obstacles
	width  int // Pipe sprite width, used for expiry and the observation target
	pieceH int // Pipe sprite height, used to place the top piece
}

// NewTrack creates a track holding one pipe at obs.FirstX.
func NewTrack(seed int64, obs config.Obstacles, sprites config.Sprites) *Track {
	t := &Track{
		pipes:  make([]Pipe, 0, 4),
		rng:    rand.New(rand.NewSource(seed)),
		obs:    obs,
		width:  sprites.PipeW,
		pieceH: sprites.PipeH,
	}
	t.pipes = append(t.pipes, t.newPipe(obs.FirstX))
	return t
}

// newPipe draws the gap uniformly from [GapMin, GapMax) and derives both edges.
func (t *Track) newPipe(x int) Pipe {
	gapTop := t.obs.GapMin + t.rng.Intn(t.obs.GapMax-t.obs.GapMin)
	return Pipe{
		X:         x,
		GapTop:    gapTop,
		GapBottom: gapTop + t.obs.Gap,
		TopY:      gapTop - t.pieceH,
	}
}

// Pipes returns the current pipes. Callers must not retain the slice across ticks.
func (t *Track) Pipes() []Pipe {
	return t.pipes
}

// Len returns the number of pipes on the track.
func (t *Track) Len() int {
	return len(t.pipes)
}

// Width returns the pipe sprite width.
func (t *Track) Width() int {
	return t.width
}

// Append adds a new pipe at the spawn offset and returns it.
func (t *Track) Append() Pipe {
	p := t.newPipe(t.obs.SpawnX)
	t.pipes = append(t.pipes, p)
	return p
}

// Advance moves every pipe left by the configured speed.
func (t *Track) Advance() {
	for i := range t.pipes {
		t.pipes[i].X -= t.obs.PipeSpeed
	}
}

// Expired reports whether p's right edge is fully past the left boundary.
func (t *Track) Expired(p Pipe) bool {
	return p.X+t.width < 0
}

// Remove deletes the pipes at the given ascending indices.
func (t *Track) Remove(indices []int) {
	if len(indices) == 0 {
		return
	}
	kept := t.pipes[:0]
	next := 0
	for i, p := range t.pipes {
		if next < len(indices) && indices[next] == i {
			next++
			continue
		}
		kept = append(kept, p)
	}
	t.pipes = kept
}
