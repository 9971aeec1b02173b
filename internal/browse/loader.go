package browse

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobscout-za/jobscout/internal/aggregator"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type searchDoneMsg struct {
	res aggregator.Result
	err error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label    string
	searchFn func(ctx context.Context) (aggregator.Result, error)
	ctx      context.Context
	cancel   context.CancelFunc
	frame    int
	result   aggregator.Result
	err      error
	done     bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doSearch(), m.tick())
}

func (m loaderModel) doSearch() tea.Cmd {
	searchFn, ctx := m.searchFn, m.ctx
	return func() tea.Msg {
		res, err := searchFn(ctx)
		return searchDoneMsg{res: res, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		m.result = msg.res
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = context.Canceled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s Searching %s...\n", spinner, m.label)
}

// runLoader shows a spinner while the search runs. It renders inline (no alt screen).
func runLoader(ctx context.Context, label string, searchFn func(ctx context.Context) (aggregator.Result, error)) (aggregator.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	m := loaderModel{
		label:    label,
		searchFn: searchFn,
		ctx:      ctx,
		cancel:   cancel,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return aggregator.Result{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
