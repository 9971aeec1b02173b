package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobscout-za/jobscout/internal/aggregator"
	"github.com/jobscout-za/jobscout/internal/model"
)

// Lines per listing in the list view (title + subtitle + blank separator).
const listingItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15"))

	sourceOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	sourceFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type resultsModel struct {
	res      aggregator.Result
	heading  string
	list     viewport.Model
	detail   viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	view     viewState
	open     func(url string)
	wantQuit bool
}

func newResults(heading string, res aggregator.Result) resultsModel {
	return resultsModel{res: res, heading: heading, open: openURL}
}

func (m resultsModel) Init() tea.Cmd {
	return nil
}

func (m resultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m resultsModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		if len(m.res.Listings) > 0 {
			m.view = viewDetail
			m.detail.SetContent(m.renderDetail())
			m.detail.SetYOffset(0)
		}
		return m, nil
	case "o":
		m.openSelected()
		return m, nil
	}

	// Forward other keys (pgup/pgdn/home/end) to the viewport.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m resultsModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		m.openSelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *resultsModel) openSelected() {
	if len(m.res.Listings) == 0 {
		return
	}
	if url := m.res.Listings[m.cursor].URL; url != "" && m.open != nil {
		m.open(url)
	}
}

func (m *resultsModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.res.Listings)-1, 0))
	m.list.SetContent(renderListings(m.res.Listings, m.cursor))

	cursorTop := m.cursor * listingItemHeight
	cursorBottom := cursorTop + listingItemHeight - 1
	if cursorTop < m.list.YOffset {
		m.list.SetYOffset(cursorTop)
	} else if cursorBottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(cursorBottom - m.list.Height + 1)
	}
}

func (m *resultsModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	width := max(m.width-2, 20)
	height := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(width, height)
		m.detail = viewport.New(width, height)
		m.ready = true
	} else {
		m.list.Width, m.list.Height = width, height
		m.detail.Width, m.detail.Height = width, height
	}
	m.list.SetContent(renderListings(m.res.Listings, m.cursor))
	m.detail.SetContent(m.renderDetail())
}

func (m resultsModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var header, body, status string
	if m.view == viewDetail {
		header = headerStyle.Render("Listing")
		body = activeBorderStyle.Width(m.width - 2).Render(m.detail.View())
		status = " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	} else {
		header = headerStyle.Render(fmt.Sprintf("%s (%d)", m.heading, len(m.res.Listings)))
		body = activeBorderStyle.Width(m.width - 2).Render(m.list.View())
		status = " " + sourceSummary(m.res.Sources) + "    ↑/↓ cursor  enter detail  o open  esc back  q quit"
	}
	return header + "\n" + body + "\n" + statusBarStyle.Width(m.width).Render(status)
}

func (m resultsModel) renderDetail() string {
	if len(m.res.Listings) == 0 {
		return ""
	}
	l := m.res.Listings[m.cursor]
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(l.Title))
	b.WriteString("\n\n")

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}
	addField("Company", l.Company)
	addField("Location", l.Location)
	addField("Salary", l.Salary)
	addField("Posted", l.DatePosted)
	addField("Source", string(l.Source))
	if !l.ScrapedAt.IsZero() {
		addField("Scraped", l.ScrapedAt.Local().Format("2006-01-02 15:04"))
	}
	b.WriteByte('\n')
	addField("URL", l.URL)
	return b.String()
}

func renderListings(listings []model.Listing, cursor int) string {
	if len(listings) == 0 {
		return "  (no listings)"
	}

	var b strings.Builder
	for i, l := range listings {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(l.Title + " · " + l.Company))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s · %s", l.Location, l.Salary, l.DatePosted, l.Source)))
		b.WriteByte('\n')

		if i < len(listings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// sourceSummary renders "careerjet 8 ✓  indeed ✗" for the status bar.
func sourceSummary(reports []aggregator.SourceReport) string {
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		if r.OK() {
			parts = append(parts, sourceOKStyle.Render(fmt.Sprintf("%s %d ✓", r.Source, r.Listings)))
		} else {
			parts = append(parts, sourceFailStyle.Render(r.Source+" ✗"))
		}
	}
	return strings.Join(parts, "  ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// runResults shows the listings full screen. Returns wantQuit=true if the
// user pressed q/ctrl+c, false if they pressed esc to start a new search.
func runResults(heading string, res aggregator.Result) (bool, error) {
	p := tea.NewProgram(newResults(heading, res), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	return result.(resultsModel).wantQuit, nil
}
