package tui

import (
	"fmt"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/core"
	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// Playfield glyphs
const (
	SkyChar      = ' '
	PipeChar     = '█'
	PipeCapChar  = '▓'
	GroundChar   = '▒'
	BirdChar     = '●'
	BirdUpChar   = '▲'
	BirdDownChar = '▼'
)

// Renderer scales the pixel playfield of a snapshot onto a character screen.
type Renderer struct {
	playfield config.Playfield
	sprites   config.Sprites
}

// NewRenderer creates a renderer for the given configuration.
func NewRenderer(cfg config.EvalConfig) Renderer {
	return Renderer{playfield: cfg.Playfield, sprites: cfg.Sprites}
}

func (r Renderer) col(dst *core.Screen, x int) int {
	return x * dst.Width() / r.playfield.Width
}

func (r Renderer) row(dst *core.Screen, y float64) int {
	return int(y * float64(dst.Height()) / float64(r.playfield.Height))
}

// Draw renders the snapshot: sky, pipes, ground, live birds and the HUD.
func (r Renderer) Draw(dst *core.Screen, s flappy.Snapshot) {
	dst.Clear()
	dst.DrawRect(core.NewRect(0, 0, dst.Width(), dst.Height()), SkyChar, core.ColorSky)

	groundRow := core.Clamp(r.row(dst, r.playfield.Ground), 0, dst.Height())

	for _, p := range s.Pipes {
		r.drawPipe(dst, p, groundRow)
	}

	dst.DrawRect(core.NewRect(0, groundRow, dst.Width(), dst.Height()-groundRow), GroundChar, core.ColorGround)

	for _, a := range s.Agents {
		if !a.Alive {
			continue
		}
		x := r.col(dst, a.X+r.sprites.BirdW/2)
		y := r.row(dst, a.Y+float64(r.sprites.BirdH)/2)
		glyph := BirdChar
		switch {
		case a.Tilt > 0:
			glyph = BirdUpChar
		case a.Tilt <= -45:
			glyph = BirdDownChar
		}
		dst.SetCell(x, y, glyph, core.ColorBird)
	}

	hud := fmt.Sprintf(" Gen: %d  Score: %d  Alive: %d/%d ", s.Generation, s.Score, s.Alive, len(s.Agents))
	dst.DrawText(1, 0, hud, core.ColorHUD)
}

// drawPipe draws both pieces of a pipe, caps facing the gap.
func (r Renderer) drawPipe(dst *core.Screen, p flappy.PipeView, groundRow int) {
	x0 := r.col(dst, p.X)
	x1 := core.Max(r.col(dst, p.X+r.sprites.PipeW), x0+1)
	width := x1 - x0

	top := core.Min(r.row(dst, float64(p.GapTop)), groundRow)
	if top > 0 {
		dst.DrawRect(core.NewRect(x0, 0, width, top-1), PipeChar, core.ColorPipe)
		dst.DrawHLine(x0, top-1, width, PipeCapChar, core.ColorPipeCap)
	}

	bottom := r.row(dst, float64(p.GapBottom))
	if bottom < groundRow {
		dst.DrawHLine(x0, bottom, width, PipeCapChar, core.ColorPipeCap)
		dst.DrawRect(core.NewRect(x0, bottom+1, width, groundRow-bottom-1), PipeChar, core.ColorPipe)
	}
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := core.Max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	box := core.NewRect((w-boxW)/2, (h-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ', core.ColorHUD)
	dst.DrawBox(box, core.ColorHUD)

	dst.DrawText(box.X+(boxW-len([]rune(title)))/2, box.Y+1, title, core.ColorHUD)
	dst.DrawText(box.X+(boxW-len([]rune(subtitle)))/2, box.Y+3, subtitle, core.ColorHUD)
}
