package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/sim"
)

var presetInfo = map[string]string{
	"cube":     "fountain in a closed box",
	"homework": "two drifting generators and a plate",
	"triangle": "spray against a tilted plate",
	"lorenz":   "particles pulled onto the attractor",
	"rain":     "two drifting clouds, quadratic drag",
}

const (
	stateMenu = iota
	stateSim
)

// App picks a preset and then hands control to its live Model.
type App struct {
	state   int
	cursor  int
	presets []string
	err     error
	live    Model
}

func NewInteractiveApp() *App {
	return &App{state: stateMenu, presets: config.ListPresets()}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			a.live.Simulator().Pause()
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start()
	}
	return a, nil
}

func (a App) start() (App, tea.Cmd) {
	name := a.presets[a.cursor]
	cfg := config.GetPreset(name)
	opts, err := cfg.LiveOptions()
	if err != nil {
		a.err = err
		return a, nil
	}
	s, err := sim.New(opts)
	if err != nil {
		a.err = err
		return a, nil
	}
	s.Start()
	a.err = nil
	a.live = NewModel(s, cfg, name)
	a.state = stateSim
	return a, a.live.Init()
}

func (a App) View() string {
	if a.state == stateSim {
		return a.live.View()
	}

	var b strings.Builder
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	b.WriteString("\n\n    " + GradientText("PARTICLESIM", CurrentTheme.Primary, CurrentTheme.Accent) + "\n    " +
		sub.Render("particle system playground") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.presets {
		desc := presetInfo[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", selectedStyle().Render("▸"),
				lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true).Render(fmt.Sprintf("%-10s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", Subtle.Render(fmt.Sprintf("  %-10s", name)), Subtle.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + errorStyle().Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  esc back  q quit") + "\n")
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
