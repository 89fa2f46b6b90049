package telemetry

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// LogSink is a flappy.Sink that logs a progress line every Every ticks and
// one line when the generation ends.
type LogSink struct {
	Logger *log.Logger
	Every  int
}

// Observe implements flappy.Sink.
func (s LogSink) Observe(snap flappy.Snapshot) {
	if s.Logger == nil {
		return
	}
	if snap.State.Terminal() {
		s.Logger.Debug("generation ended",
			"gen", snap.Generation,
			"state", snap.State,
			"tick", snap.Tick,
			"score", snap.Score,
		)
		return
	}
	if s.Every > 0 && snap.Tick%s.Every == 0 {
		s.Logger.Debug("tick",
			"gen", snap.Generation,
			"tick", snap.Tick,
			"score", snap.Score,
			"alive", snap.Alive,
			"pipes", len(snap.Pipes),
		)
	}
}
