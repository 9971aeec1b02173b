package browse

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// Picker results other than an item index.
const (
	pickNone = -1
	pickQuit = -2
	pickBack = -3
)

type pickerModel struct {
	title     string
	items     []string
	cursor    int
	chosen    int
	canGoBack bool
}

func newPicker(title string, items []string, canGoBack bool) pickerModel {
	return pickerModel{title: title, items: items, chosen: pickNone, canGoBack: canGoBack}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.chosen = pickQuit
			return m, tea.Quit
		case "esc", "backspace":
			if m.canGoBack {
				m.chosen = pickBack
				return m, tea.Quit
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.items) > 0 {
				m.chosen = m.cursor
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render(m.title)
	s += "\n"

	for i, label := range m.items {
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	hint := "↑/↓/j/k navigate  enter select  q quit"
	if m.canGoBack {
		hint = "↑/↓/j/k navigate  enter select  esc back  q quit"
	}
	s += pickerHintStyle.Render(hint)
	return s
}

// runPicker shows an interactive selector and returns the chosen index or
// one of pickQuit and pickBack.
func runPicker(title string, items []string, canGoBack bool) (int, error) {
	p := tea.NewProgram(newPicker(title, items, canGoBack))
	result, err := p.Run()
	if err != nil {
		return pickQuit, err
	}

	final := result.(pickerModel)
	if final.chosen == pickNone {
		return pickQuit, nil
	}
	return final.chosen, nil
}
