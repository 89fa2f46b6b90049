package flappy

// Pipe is a pair of top and bottom pieces with a vertical gap between them.
type Pipe struct {
	X         int  // Horizontal position (left edge), decreases every tick
	GapTop    int  // Lower edge of the top piece, drawn once at creation
	GapBottom int  // Upper edge of the bottom piece: GapTop + gap
	TopY      int  // Draw origin of the top piece: GapTop - piece height
	Passed    bool // Set the first tick any agent reaches X
}
