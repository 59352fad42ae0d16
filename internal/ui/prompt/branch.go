package prompt

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/wtp/internal/ui/styles"
)

// BranchResult is the outcome of [BranchInput].
type BranchResult struct {
	Branch    string
	Cancelled bool
}

type branchModel struct {
	input     textinput.Model
	title     string
	validate  func(string) error
	err       error
	done      bool
	cancelled bool
}

func newBranchModel(title, placeholder string, validate func(string) error) branchModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 255
	ti.SetWidth(60)
	ti.Focus()
	return branchModel{input: ti, title: title, validate: validate}
}

func (m branchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m branchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "enter":
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				return m, nil
			}
			if m.validate != nil {
				if err := m.validate(name); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
		m.err = nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m branchModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	s := m.title + "\n" + m.input.View()
	if m.err != nil {
		s += "\n" + styles.ErrorStyle.Render(m.err.Error())
	}
	return tea.NewView(s)
}

// BranchInput asks for a branch name. Enter on an empty line is ignored; a
// name rejected by validate is reported below the input and can be edited.
func BranchInput(title, placeholder string, validate func(string) error) (BranchResult, error) {
	final, err := newProgram(newBranchModel(title, placeholder, validate)).Run()
	if err != nil {
		return BranchResult{}, err
	}
	m := final.(branchModel)
	if m.cancelled {
		return BranchResult{Cancelled: true}, nil
	}
	return BranchResult{Branch: strings.TrimSpace(m.input.Value())}, nil
}
