package prompt

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether stdin and stderr are terminals.
func Interactive() bool {
	in, errOut := os.Stdin.Fd(), os.Stderr.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(errOut) || isatty.IsCygwinTerminal(errOut))
}

// newProgram renders to stderr so stdout can be piped.
func newProgram(model tea.Model) *tea.Program {
	profile := colorprofile.Detect(os.Stderr, os.Environ())
	return tea.NewProgram(model,
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(profile),
	)
}
