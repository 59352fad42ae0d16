package prompt

import (
	"fmt"
	"io"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/wtp/internal/ui/styles"
)

// Choice is one row of a picker. Label is what the filter matches; Detail is
// shown dimmed after it.
type Choice struct {
	Label  string
	Detail string
}

// PickResult is the outcome of [Pick]. Index points into the choices passed in.
type PickResult struct {
	Index     int
	Cancelled bool
}

type choiceItem struct {
	Choice
	index int
}

func (i choiceItem) FilterValue() string { return i.Label }

// choiceDelegate renders a choice on a single line: a cursor, the label and
// the detail.
type choiceDelegate struct{}

func (choiceDelegate) Height() int                         { return 1 }
func (choiceDelegate) Spacing() int                        { return 0 }
func (choiceDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(choiceItem)
	if !ok {
		return
	}
	cursor, label := "  ", styles.NormalStyle.Render(c.Label)
	if index == m.Index() {
		cursor, label = styles.AccentStyle.Render("> "), styles.AccentStyle.Render(c.Label)
	}
	if c.Detail == "" {
		fmt.Fprint(w, cursor+label)
		return
	}
	fmt.Fprint(w, cursor+label+"  "+styles.MutedStyle.Render(c.Detail))
}

type pickModel struct {
	list      list.Model
	done      bool
	cancelled bool
	picked    int
}

func newPickModel(title string, choices []Choice) pickModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = choiceItem{Choice: c, index: i}
	}

	l := list.New(items, choiceDelegate{}, 72, min(len(choices)+6, 20))
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return pickModel{list: l, picked: -1}
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if m.list.SettingFilter() {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(choiceItem); ok {
				m.picked = item.index
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(m.list.View())
}

// Pick shows a filterable list of choices. Typing "/" filters by label.
func Pick(title string, choices []Choice) (PickResult, error) {
	if len(choices) == 0 {
		return PickResult{Cancelled: true}, nil
	}

	final, err := newProgram(newPickModel(title, choices)).Run()
	if err != nil {
		return PickResult{}, err
	}
	m := final.(pickModel)
	if m.cancelled || m.picked < 0 || m.picked >= len(choices) {
		return PickResult{Cancelled: true}, nil
	}
	return PickResult{Index: m.picked}, nil
}
