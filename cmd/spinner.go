package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// spinnerModel drives the animation shown while a blocking operation
// (the health-gated start-and-wait loop) runs in the background.
// Grounded on bnema-gordon's
// internal/adapters/in/cli/ui/components/spinner.go, trimmed to the
// one state transition withSpinner needs: ticking, then done.
type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	return spinnerModel{spinner: s, message: message}
}

type spinnerDoneMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.message + "\n"
}

// withSpinner runs fn to completion, showing an animated spinner with
// message while it runs. In a non-interactive terminal (CI, piped
// output) it skips the Bubble Tea program entirely and just logs the
// message once, since a spinner animation has nothing to draw against.
func withSpinner(message string, fn func() error) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(message)
		return fn()
	}

	p := tea.NewProgram(newSpinnerModel(message))
	done := make(chan error, 1)

	go func() {
		done <- fn()
		p.Send(spinnerDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return <-done
}
