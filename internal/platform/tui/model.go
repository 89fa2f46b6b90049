package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/core"
	"github.com/vovakirdan/neuroflap/internal/evolve"
	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// Viewer limits
const (
	maxSpeed  = 64    // Simulation ticks per frame
	skipTicks = 20000 // Bound of a single "finish generation" request
)

// Source supplies generations to watch. evolve.Trainer and evolve.Replay
// implement it; Next returns evolve.ErrFinished when nothing is left.
type Source interface {
	Next() (*flappy.Generation, error)
	Complete(ctx context.Context, res flappy.Result) error
}

// Options configures the viewer.
type Options struct {
	TickRate int // Frames per second
	Speed    int // Simulation ticks per frame
	Width    int
	Height   int
}

// DefaultOptions returns 30 frames per second, one tick per frame.
func DefaultOptions() Options {
	return Options{TickRate: 30, Speed: 1, Width: 80, Height: 24}
}

// Model is the Bubble Tea model that steps generations from a Source and
// draws them as they run.
type Model struct {
	ctx      context.Context
	source   Source
	gen      *flappy.Generation
	renderer Renderer
	screen   *core.Screen
	keys     ViewerKeyMap
	help     help.Model
	opts     Options
	paused   bool
	finished bool
	err      error
	quitting bool
}

// NewModel creates a viewer and fetches the first generation.
func NewModel(ctx context.Context, source Source, cfg config.EvalConfig, opts Options) Model {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultOptions().TickRate
	}
	opts.Speed = core.Clamp(opts.Speed, 1, maxSpeed)

	m := Model{
		ctx:      ctx,
		source:   source,
		renderer: NewRenderer(cfg),
		screen:   core.NewScreen(opts.Width, core.Max(opts.Height-1, 1)), // Last row is help
		keys:     DefaultViewerKeyMap(),
		help:     help.New(),
		opts:     opts,
	}
	m.advance()
	return m
}

// advance fetches the next generation, recording the end of the source.
func (m *Model) advance() {
	gen, err := m.source.Next()
	switch {
	case errors.Is(err, evolve.ErrFinished):
		m.finished = true
	case err != nil:
		m.err = err
	default:
		m.gen = gen
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, core.Max(msg.Height-1, 1))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Faster):
		m.opts.Speed = core.Min(m.opts.Speed*2, maxSpeed)
	case key.Matches(msg, m.keys.Slower):
		m.opts.Speed = core.Max(m.opts.Speed/2, 1)
	case key.Matches(msg, m.keys.Skip):
		m.step(skipTicks)
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
	}
	return m, nil
}

// handleTick advances the simulation by one frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.ctx.Err() != nil {
		m.quitting = true
		return m, tea.Quit
	}
	if !m.paused {
		m.step(m.opts.Speed)
	}
	return m, tickCmd(m.opts.TickRate)
}

// step runs up to n ticks of the current generation. A generation that ends
// is completed and the next one fetched.
func (m *Model) step(n int) {
	if m.gen == nil || m.finished || m.err != nil {
		return
	}
	for i := 0; i < n && !m.gen.State().Terminal(); i++ {
		if err := m.gen.Step(); err != nil {
			m.err = err
			return
		}
	}
	if !m.gen.State().Terminal() {
		return
	}
	if err := m.source.Complete(m.ctx, m.gen.Result()); err != nil {
		m.err = err
		return
	}
	m.advance()
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	if m.gen == nil {
		return
	}
	m.renderer.Draw(m.screen, m.gen.Snapshot())

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".neuroflap", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("gen%d_tick%d_%s.txt", m.gen.Number(), m.gen.Tick(), timestamp)

	//nolint:errcheck // Best-effort save, the viewer continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.gen != nil {
		m.renderer.Draw(m.screen, m.gen.Snapshot())
	} else {
		m.screen.Clear()
	}

	switch {
	case m.err != nil:
		drawCenteredMessage(m.screen, "ERROR", m.err.Error())
	case m.finished:
		drawCenteredMessage(m.screen, "FINISHED", "Press Q to quit")
	case m.paused:
		drawCenteredMessage(m.screen, "PAUSED", "Press P to resume")
	}

	status := fmt.Sprintf("x%d  ", m.opts.Speed)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(status+m.help.View(m.keys))
}

// Err returns the error that stopped the viewer, if any.
func (m Model) Err() error {
	return m.err
}

// Finished reports whether the source has no more generations.
func (m Model) Finished() bool {
	return m.finished
}

// Paused reports whether stepping is paused.
func (m Model) Paused() bool {
	return m.paused
}

// Speed returns the number of ticks run per frame.
func (m Model) Speed() int {
	return m.opts.Speed
}

// Generation returns the generation on screen, or nil.
func (m Model) Generation() *flappy.Generation {
	return m.gen
}

// Run starts the Bubble Tea program for the given source.
func Run(ctx context.Context, source Source, cfg config.EvalConfig, opts Options) error {
	model := NewModel(ctx, source, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
