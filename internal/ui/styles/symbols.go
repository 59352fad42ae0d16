package styles

import (
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/wtp/internal/remote"
)

// Symbols holds the icon set based on nerdfont configuration
type Symbols struct {
	GitHub    string
	GitLab    string
	Bitbucket string
	Git       string
	Dirty     string
	Clean     string
	Detached  string
}

// Default symbols (ASCII-safe)
var defaultSymbols = Symbols{
	GitHub:    "gh",
	GitLab:    "gl",
	Bitbucket: "bb",
	Git:       "git",
	Dirty:     "●",
	Clean:     "✓",
	Detached:  "(detached)",
}

// Nerd font symbols
var nerdfontSymbols = Symbols{
	GitHub:    "\uf09b", // nf-fa-github
	GitLab:    "\uf296", // nf-fa-gitlab
	Bitbucket: "\uf171", // nf-fa-bitbucket
	Git:       "\ue702", // nf-dev-git
	Dirty:     "\uf444", // nf-oct-dot_fill
	Clean:     "\uf42e", // nf-oct-check
	Detached:  "\uf417", // nf-oct-git_commit
}

var currentSymbols = defaultSymbols

// SetNerdfont enables or disables nerd font symbols
func SetNerdfont(enabled bool) {
	if enabled {
		currentSymbols = nerdfontSymbols
	} else {
		currentSymbols = defaultSymbols
	}
}

// CurrentSymbols returns the current symbol set
func CurrentSymbols() Symbols {
	return currentSymbols
}

// RemoteSymbol returns the symbol for a remote icon.
func RemoteSymbol(icon remote.Icon) string {
	switch icon {
	case remote.IconGitHub:
		return currentSymbols.GitHub
	case remote.IconGitLab:
		return currentSymbols.GitLab
	case remote.IconBitbucket:
		return currentSymbols.Bitbucket
	default:
		return currentSymbols.Git
	}
}

// FormatRemote renders "<symbol> owner/repo" as an OSC 8 hyperlink to the
// remote's web URL.
func FormatRemote(r remote.Remote) string {
	text := RemoteSymbol(r.Icon) + " " + r.Name
	if r.URL == "" {
		return text
	}
	return ansi.SetHyperlink(r.URL) + PrimaryStyle.Render(text) + ansi.ResetHyperlink()
}

// FormatDirty renders a resolved dirty flag. Unresolved flags render empty.
func FormatDirty(dirty *bool) string {
	switch {
	case dirty == nil:
		return ""
	case *dirty:
		return WarningStyle.Render(currentSymbols.Dirty)
	default:
		return SuccessStyle.Render(currentSymbols.Clean)
	}
}

// FormatBranch renders a branch name, marking detached worktrees.
func FormatBranch(branch string) string {
	if branch == "" {
		return MutedStyle.Render(currentSymbols.Detached)
	}
	return lipgloss.NewStyle().Render(branch)
}
