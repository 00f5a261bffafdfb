package live

import (
	"strings"

	"factotum-cli/internal/render"
	"factotum-cli/internal/timeline"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// refreshMsg nudges the program after a timeline mutation. Frames are still
// coalesced by the renderer's frame-rate ceiling.
type refreshMsg struct{}

// finalizeMsg blanks the live region so the driver can print the final
// static transcript beneath it.
type finalizeMsg struct{}

type model struct {
	theme       render.Theme
	snapshot    func() timeline.Snapshot
	spinner     spinner.Model
	width       int
	finished    bool
	interrupted bool
	onInterrupt func()
}

func newModel(theme render.Theme, snapshot func() timeline.Snapshot, width int, onInterrupt func()) *model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Info))
	if width <= 0 {
		width = 80
	}
	return &model{
		theme:       theme,
		snapshot:    snapshot,
		spinner:     sp,
		width:       width,
		onInterrupt: onInterrupt,
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		// Interrupt cancels the turn; the driver still flushes current state
		// as the final render.
		if msg.Type == tea.KeyCtrlC && !m.interrupted {
			m.interrupted = true
			if m.onInterrupt != nil {
				m.onInterrupt()
			}
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case refreshMsg:
		return m, nil
	case finalizeMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) View() string {
	if m.finished {
		return ""
	}
	header := m.spinner.View() + m.theme.Info.Render("Working…")
	if m.interrupted {
		header = m.theme.Muted.Render("Interrupting…")
	}

	lines := render.LinesToStrings(render.ProjectTranscript(m.theme, m.snapshot(), m.width))
	if len(lines) == 0 {
		return header + "\n"
	}
	return header + "\n\n" + strings.Join(lines, "\n") + "\n"
}
