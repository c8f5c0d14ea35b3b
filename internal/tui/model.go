// Package tui renders load progress in the terminal while previews are
// decoded.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressMsg reports that done of total images have been decoded
type ProgressMsg struct {
	Done  int
	Total int
}

// DoneMsg ends the program; Err is the load result
type DoneMsg struct {
	Err error
}

const maxBarWidth = 60

// Model is the bubbletea model for the loading screen
type Model struct {
	total       int
	done        int
	keys        KeyMap
	bar         progress.Model
	spinner     spinner.Model
	help        help.Model
	err         error
	finished    bool
	interrupted bool
}

// New creates a loading model for total images
func New(total int) *Model {
	return &Model{
		total:   total,
		keys:    DefaultKeyMap(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StatusStyle)),
		help:    help.New(),
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		// Progress callbacks can arrive out of order
		if msg.Done > m.done {
			m.done = msg.Done
		}
		if msg.Total > 0 {
			m.total = msg.Total
		}
		return m, nil

	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.interrupted = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		m.help.Width = msg.Width
	}
	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Loading %d images...", m.total)))
	b.WriteString("\n\n")

	switch {
	case m.finished && m.err != nil:
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	case m.finished:
		b.WriteString(m.bar.ViewAs(1))
		b.WriteString("\n")
		b.WriteString(SuccessStyle.Render("Loaded images!"))
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.bar.ViewAs(m.Percent()))
		b.WriteString(" ")
		b.WriteString(StatusStyle.Render(fmt.Sprintf("Loaded %d/%d...", m.done, m.total)))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
	}
	b.WriteString("\n")
	return App.Render(b.String())
}

// Percent returns the fraction of images decoded
func (m *Model) Percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

// Done returns the number of images decoded so far
func (m *Model) Done() int {
	return m.done
}

// Interrupted reports whether the user quit before loading finished
func (m *Model) Interrupted() bool {
	return m.interrupted
}
