package live

import (
	"fmt"
	"io"
	"os"
	"sync"

	"factotum-cli/internal/logger"
	"factotum-cli/internal/render"
	"factotum-cli/internal/timeline"

	tea "github.com/charmbracelet/bubbletea"
)

// maxFPS bounds the live redraw rate. It is a ceiling: many mutations may
// collapse into one frame, never the other way around.
const maxFPS = 10

var log = logger.Named("live")

// Driver owns the live phase of one turn: an inline terminal program that
// repaints the projected timeline at a bounded rate, and the single final
// static render once streaming ends.
type Driver struct {
	theme    render.Theme
	snapshot func() timeline.Snapshot
	w        io.Writer
	width    int

	mu      sync.Mutex
	program *tea.Program
	model   *model
	done    chan error
}

// Options configure a Driver. Snapshot is required; Writer defaults to
// stdout and Width to 80 columns.
type Options struct {
	Theme    render.Theme
	Snapshot func() timeline.Snapshot
	Writer   io.Writer
	Width    int
}

func NewDriver(opts Options) *Driver {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	return &Driver{theme: opts.Theme, snapshot: opts.Snapshot, w: w, width: width}
}

// Begin starts the live redraw loop. onInterrupt fires at most once if the
// user interrupts the turn from the keyboard.
func (d *Driver) Begin(onInterrupt func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.program != nil {
		return
	}
	m := newModel(d.theme, d.snapshot, d.width, onInterrupt)
	d.model = m
	d.program = tea.NewProgram(m, tea.WithOutput(d.w), tea.WithFPS(maxFPS))
	d.done = make(chan error, 1)
	go func(p *tea.Program, done chan<- error) {
		_, err := p.Run()
		done <- err
	}(d.program, d.done)
}

// NotifyChanged requests a redraw. Safe to call from any goroutine and at
// any rate; frames are coalesced.
func (d *Driver) NotifyChanged() {
	d.mu.Lock()
	p := d.program
	d.mu.Unlock()
	if p != nil {
		p.Send(refreshMsg{})
	}
}

// End stops the live loop, blanks the live region, and writes exactly one
// final static render: the full transcript, then the reasoning block after
// the primary content when the thought buffer is non-empty.
//
// A display backend failure is returned as a turn-level error; it never
// takes the process down.
func (d *Driver) End() error {
	d.mu.Lock()
	p := d.program
	m := d.model
	done := d.done
	d.program = nil
	d.model = nil
	d.done = nil
	d.mu.Unlock()

	if p == nil {
		return nil
	}
	p.Send(finalizeMsg{})
	runErr := <-done
	if runErr != nil {
		log.Warnf("live display terminated abnormally: %v", runErr)
	}

	// The program has exited, so reading the model's resize-tracked width is
	// safe; the final render wraps at the terminal's last known size.
	snap := d.snapshot()
	if err := d.writeFinal(snap, d.finalWidth(m)); err != nil {
		return fmt.Errorf("final render: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("live display: %w", runErr)
	}
	return nil
}

func (d *Driver) finalWidth(m *model) int {
	if m != nil && m.width > 0 {
		return m.width
	}
	return d.width
}

func (d *Driver) writeFinal(snap timeline.Snapshot, width int) error {
	lines := render.LinesToStrings(render.ProjectTranscript(d.theme, snap, width))
	for _, line := range lines {
		if _, err := fmt.Fprintln(d.w, line); err != nil {
			return err
		}
	}
	thoughts := render.LinesToStrings(render.ProjectThoughts(d.theme, snap, width))
	if len(thoughts) > 0 {
		if _, err := fmt.Fprintln(d.w); err != nil {
			return err
		}
		for _, line := range thoughts {
			if _, err := fmt.Fprintln(d.w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
