// internal/tui/model.go
//
// The selection screen shown for one pick. It follows The Elm Architecture
// like every bubbletea program:
//
// 1. Model: the candidate list plus what the user chose
// 2. Update: keys move, filter, pick or cancel
// 3. View: title, list and a detail pane for the highlighted type

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/resolver"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	detailWidth   = 38
)

// candidateItem implements list.Item for one catalog type.
type candidateItem struct {
	typ catalog.Type
}

func (i candidateItem) Title() string {
	return fmt.Sprintf("[%s] %s", i.typ.IconOrDefault(), i.typ.Signature())
}

func (i candidateItem) Description() string {
	if i.typ.Description != "" {
		return i.typ.Description
	}
	return i.typ.QualifiedName
}

func (i candidateItem) FilterValue() string { return i.typ.DisplayName() }

// pickerModel is the state of one selection screen.
type pickerModel struct {
	req  resolver.Request
	list list.Model

	width  int
	height int

	chosen catalog.Type
	done   bool
	ok     bool
}

func newPickerModel(req resolver.Request) *pickerModel {
	types := req.Candidates.Types()
	items := make([]list.Item, len(types))
	for i, t := range types {
		items[i] = candidateItem{typ: t}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = req.Title()
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("type", "types")
	l.Filter = candidateFilter(req.Candidates)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	m := &pickerModel{req: req, list: l}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// candidateFilter narrows the list with the same substring rule the engine
// applies to candidate sets, so filtering in the UI and in scripts agree.
// Targets arrive in candidate order, so candidate indexes are list indexes.
func candidateFilter(set resolver.CandidateSet) list.FilterFunc {
	return func(term string, targets []string) []list.Rank {
		indexes := set.FilterIndexes(term)
		ranks := make([]list.Rank, 0, len(indexes))
		for _, idx := range indexes {
			if idx >= len(targets) {
				break
			}
			ranks = append(ranks, list.Rank{Index: idx})
		}
		return ranks
	}
}

func (m *pickerModel) resize(width, height int) {
	m.width = width
	m.height = height
	listWidth := width - detailWidth - 4
	if listWidth < 20 {
		listWidth = width
	}
	m.list.SetSize(max(0, listWidth), max(0, height-4))
}

// Init is called once when the program starts.
func (m *pickerModel) Init() tea.Cmd {
	return nil
}

// Update handles one message.
func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.cancel()
		case "esc":
			// esc first clears an active filter, then cancels the pick.
			if m.list.FilterState() == list.Unfiltered {
				return m.cancel()
			}
		case "enter":
			if m.list.FilterState() != list.Filtering {
				return m.pick()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *pickerModel) pick() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(candidateItem)
	if !ok {
		return m, nil
	}
	m.chosen = item.typ
	m.ok = true
	m.done = true
	return m, tea.Quit
}

func (m *pickerModel) cancel() (tea.Model, tea.Cmd) {
	m.chosen = catalog.Type{}
	m.ok = false
	m.done = true
	return m, tea.Quit
}

// View renders the screen.
func (m *pickerModel) View() string {
	if m.done {
		return ""
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render("⬡ MODSELECT")
	location := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(fmt.Sprintf("at %s · requires %s", m.req.Location(), m.req.Constraints))

	listBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(m.list.View())
	body := listBox
	if m.width-detailWidth-4 >= 20 {
		detailBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(detailWidth).
			Render(m.renderDetail())
		body = lipgloss.JoinHorizontal(lipgloss.Top, listBox, detailBox)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render("enter select · / filter · esc cancel")
	return strings.Join([]string{header, location, body, footer}, "\n")
}

func (m *pickerModel) renderDetail() string {
	item, ok := m.list.SelectedItem().(candidateItem)
	if !ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("No matching types.")
	}
	t := item.typ
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(t.Signature())
	lines := []string{title, t.QualifiedName}
	if t.Description != "" {
		lines = append(lines, "", t.Description)
	}
	if params := t.OrderedParameters(); len(params) > 0 {
		lines = append(lines, "", "Parameters:")
		for _, p := range params {
			lines = append(lines, fmt.Sprintf("  %s requires %s", p.Name, p.Constraints))
		}
	}
	if url := t.DocumentationURL(); url != "" {
		lines = append(lines, "", lipgloss.NewStyle().Underline(true).Render(url))
	}
	return strings.Join(lines, "\n")
}
