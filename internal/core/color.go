package core

// Color identifies the palette entry of a screen cell.
// Renderers map it to terminal styles.
type Color uint8

// Palette for playfield elements.
const (
	ColorDefault Color = iota
	ColorSky
	ColorPipe
	ColorPipeCap
	ColorBird
	ColorGround
	ColorHUD
)
