package browse

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptModel struct {
	title  string
	input  textinput.Model
	value  string
	result int // pickNone until submitted, then 0, pickBack or pickQuit
}

func newPrompt(title, placeholder string) promptModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 40
	ti.Focus()
	return promptModel{title: title, input: ti, result: pickNone}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			m.result = pickQuit
			return m, tea.Quit
		case "esc":
			m.result = pickBack
			return m, tea.Quit
		case "enter":
			m.value = strings.TrimSpace(m.input.Value())
			m.result = 0
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	return pickerTitleStyle.Render(m.title) + "\n" +
		"  " + m.input.View() + "\n" +
		pickerHintStyle.Render("enter search (empty for all jobs)  esc back  ctrl+c quit")
}

// runPrompt asks for the search keywords.
func runPrompt(title string) (string, int, error) {
	p := tea.NewProgram(newPrompt(title, "e.g. developer"))
	result, err := p.Run()
	if err != nil {
		return "", pickQuit, err
	}
	final := result.(promptModel)
	if final.result == pickNone {
		return "", pickQuit, nil
	}
	return final.value, final.result, nil
}
