// Package static provides non-interactive terminal output components.
package static

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/wtp/internal/project"
	"github.com/raphi011/wtp/internal/ui/styles"
)

// Table headers
var (
	ProjectHeaders  = []string{"PROJECT", "GROUP", "PATH", "REMOTE", "WORKTREES"}
	WorktreeHeaders = []string{"PROJECT", "BRANCH", "COMMIT", "DIRTY", "PATH"}
)

// shortHashLen is the number of commit hash characters shown.
const shortHashLen = 7

// RenderTable creates a formatted table with proper column alignment.
// No borders are rendered. An empty row set renders nothing.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	var output strings.Builder
	output.WriteString(t.String())
	output.WriteString("\n")
	return output.String()
}

// ProjectTableRow builds the row for a project, matching ProjectHeaders.
func ProjectTableRow(p project.Project) []string {
	remotes := make([]string, 0, len(p.Remotes))
	for _, r := range p.Remotes {
		remotes = append(remotes, styles.FormatRemote(r))
	}
	return []string{
		p.Name,
		styles.MutedStyle.Render(p.PrimaryDirectory),
		p.DisplayPath,
		strings.Join(remotes, ", "),
		strconv.Itoa(len(p.Worktrees)),
	}
}

// WorktreeTableRow builds the row for a worktree, matching WorktreeHeaders.
func WorktreeTableRow(wt project.ProjectWorktree) []string {
	commit := wt.Commit
	if len(commit) > shortHashLen {
		commit = commit[:shortHashLen]
	}
	return []string{
		wt.ProjectName,
		styles.FormatBranch(wt.Branch),
		commit,
		styles.FormatDirty(wt.Dirty),
		wt.Path,
	}
}
