package flappy

// AgentView is a read-only copy of one agent for renderers and loggers.
type AgentView struct {
	X       int
	Y       float64
	Tilt    float64
	Fitness float64
	Alive   bool
}

// PipeView is a read-only copy of one pipe.
type PipeView struct {
	X         int
	GapTop    int
	GapBottom int
	Passed    bool
}

// Snapshot is the state of a generation after a tick.
type Snapshot struct {
	Generation int
	Tick       int
	Score      int
	Alive      int
	State      State
	Agents     []AgentView
	Pipes      []PipeView
}

// Sink receives a snapshot after every tick. It must not block for long:
// the loop waits for Observe to return.
type Sink interface {
	Observe(s Snapshot)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(s Snapshot)

// Observe calls f(s).
func (f SinkFunc) Observe(s Snapshot) {
	f(s)
}
