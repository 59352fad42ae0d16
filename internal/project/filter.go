package project

import (
	"cmp"
	"slices"

	"github.com/sahilm/fuzzy"
)

type projectSource []Project

func (s projectSource) String(i int) string { return s[i].Name + " " + s[i].DisplayPath }
func (s projectSource) Len() int            { return len(s) }

type worktreeSource []ProjectWorktree

func (s worktreeSource) String(i int) string {
	return s[i].ProjectName + " " + s[i].Branch + " " + s[i].Path
}
func (s worktreeSource) Len() int { return len(s) }

// Filter returns the projects fuzzy-matching query, best match first.
// An empty query returns projects unchanged.
func Filter(projects []Project, query string) []Project {
	if query == "" {
		return projects
	}
	matches := fuzzy.FindFrom(query, projectSource(projects))
	out := make([]Project, 0, len(matches))
	for _, m := range matches {
		out = append(out, projects[m.Index])
	}
	return out
}

// FilterWorktrees returns the worktrees fuzzy-matching query, best match first.
func FilterWorktrees(worktrees []ProjectWorktree, query string) []ProjectWorktree {
	if query == "" {
		return worktrees
	}
	matches := fuzzy.FindFrom(query, worktreeSource(worktrees))
	out := make([]ProjectWorktree, 0, len(matches))
	for _, m := range matches {
		out = append(out, worktrees[m.Index])
	}
	return out
}

// SortByScore orders projects by descending score, then by display path.
func SortByScore(projects []Project, scores map[string]float64) {
	slices.SortStableFunc(projects, func(a, b Project) int {
		if c := cmp.Compare(scores[b.FullPath], scores[a.FullPath]); c != 0 {
			return c
		}
		return cmp.Compare(a.DisplayPath, b.DisplayPath)
	})
}
