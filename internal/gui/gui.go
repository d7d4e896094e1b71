// Package gui is the Bubble Tea live view for a benchmark run: one line per
// round, updated as the orchestrator publishes lifecycle events.
package gui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/bench"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/config"
)

// EventMsg wraps an orchestrator round event.
type EventMsg bench.Event

// DoneMsg signals that the event stream ended: every round has run.
type DoneMsg struct{}

type roundLine struct {
	key   string
	state bench.State
	err   string
}

type model struct {
	rounds []roundLine
	done   bool

	width  int
	height int
}

// Run starts the live view. The caller pumps orchestrator events into the
// events channel and closes it when the run finishes; the view stays up
// afterwards until the user quits.
func Run(rounds []config.RoundSpec, events <-chan bench.Event) error {
	lines := make([]roundLine, len(rounds))
	for i, rs := range rounds {
		lines[i] = roundLine{key: rs.Key()}
	}
	p := tea.NewProgram(model{rounds: lines}, tea.WithAltScreen())

	go func() {
		for e := range events {
			p.Send(EventMsg(e))
		}
		p.Send(DoneMsg{})
	}()

	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case EventMsg:
		if msg.Index >= 0 && msg.Index < len(m.rounds) {
			r := &m.rounds[msg.Index]
			// Terminated is cleanup, not an outcome; keep the last real state.
			if msg.State != bench.StateTerminated {
				r.state = msg.State
			}
			if msg.Err != nil {
				r.err = msg.Err.Error()
			}
		}
		return m, nil

	case DoneMsg:
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmbench: recording"))
	b.WriteString("\n\n")

	recorded, failed := 0, 0
	for _, r := range m.rounds {
		switch r.state {
		case bench.StateRecorded:
			recorded++
		case bench.StateFailed:
			failed++
		}
	}

	for _, r := range m.rounds {
		b.WriteString(fmt.Sprintf("  %-24s %s", r.key, renderState(r.state)))
		if r.err != "" {
			b.WriteString("  " + errStyle.Render(r.err))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		status := fmt.Sprintf("done: %d/%d recorded", recorded, len(m.rounds))
		if failed > 0 {
			status += fmt.Sprintf(", %d failed", failed)
		}
		b.WriteString(stateRecorded.Render(status))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("press q to quit"))
	} else {
		b.WriteString(fmt.Sprintf("%d/%d recorded  ", recorded, len(m.rounds)))
		b.WriteString(helpStyle.Render("q: quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func renderState(s bench.State) string {
	switch s {
	case bench.StateRecorded:
		return stateRecorded.Render(string(s))
	case bench.StateFailed:
		return stateFailed.Render(string(s))
	case bench.StateLaunching, bench.StateWaiting, bench.StateLocating, bench.StateReading:
		return stateActive.Render(string(s))
	default:
		return statePending.Render("pending")
	}
}
