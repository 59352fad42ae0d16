// Package project discovers bare-repository projects and their worktrees and
// keeps the results in the wtp cache.
//
// Discovery is a linear pipeline: the finder locates ".bare" directories, each
// candidate is confirmed with git, worktrees are parsed from porcelain output
// and dirtiness is resolved lazily in bounded batches. [Service] puts a
// read-through cache in front of the pipeline and keeps it current on add and
// remove operations.
package project

import (
	"path/filepath"
	"strings"

	"github.com/raphi011/wtp/internal/remote"
)

// BareRepository is a project directory holding a bare repository in ".bare".
type BareRepository struct {
	FullPath         string          `json:"fullPath" yaml:"full_path"`
	Name             string          `json:"name" yaml:"name"`
	DisplayPath      string          `json:"displayPath" yaml:"display_path"`
	PathSegments     []string        `json:"pathSegments" yaml:"path_segments"`
	PrimaryDirectory string          `json:"primaryDirectory" yaml:"primary_directory"`
	Remotes          []remote.Remote `json:"remotes" yaml:"remotes"`
}

// NewBareRepository derives the display fields for the project at fullPath.
// home, when non-empty, is shortened to "~" in DisplayPath.
func NewBareRepository(fullPath, home string) BareRepository {
	fullPath = filepath.Clean(fullPath)

	display := fullPath
	if home != "" {
		home = filepath.Clean(home)
		if fullPath == home {
			display = "~"
		} else if strings.HasPrefix(fullPath, home+string(filepath.Separator)) {
			display = "~" + strings.TrimPrefix(fullPath, home)
		}
	}

	var segments []string
	for _, s := range strings.Split(filepath.ToSlash(display), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	return BareRepository{
		FullPath:         fullPath,
		Name:             filepath.Base(fullPath),
		DisplayPath:      display,
		PathSegments:     segments,
		PrimaryDirectory: filepath.Base(filepath.Dir(fullPath)),
		Remotes:          []remote.Remote{},
	}
}

// Worktree is a checked-out working directory of a project.
// ID always equals Path.
type Worktree struct {
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path" yaml:"path"`
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"` // empty when detached
	Commit string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Dirty  *bool  `json:"dirty,omitempty" yaml:"dirty,omitempty"` // nil until resolved
}

// Project is a bare repository with its worktrees. It is the unit stored in
// the cache.
type Project struct {
	BareRepository `yaml:",inline"`
	Worktrees      []Worktree `json:"worktrees" yaml:"worktrees"`
}

// ProjectWorktree is a worktree together with the project it belongs to.
type ProjectWorktree struct {
	Worktree    `yaml:",inline"`
	ProjectPath string `json:"projectPath" yaml:"project_path"`
	ProjectName string `json:"projectName" yaml:"project_name"`
}

// Flatten lists the worktrees of all projects in order.
func Flatten(projects []Project) []ProjectWorktree {
	var out []ProjectWorktree
	for _, p := range projects {
		for _, wt := range p.Worktrees {
			out = append(out, ProjectWorktree{Worktree: wt, ProjectPath: p.FullPath, ProjectName: p.Name})
		}
	}
	return out
}

// Directories returns the project paths.
func Directories(projects []Project) []string {
	dirs := make([]string, 0, len(projects))
	for _, p := range projects {
		dirs = append(dirs, p.FullPath)
	}
	return dirs
}

// Find returns the project matching query by full path, display path or
// name. Name matches must be unambiguous.
func Find(projects []Project, query string) (Project, bool) {
	if abs, err := filepath.Abs(query); err == nil {
		for _, p := range projects {
			if p.FullPath == abs {
				return p, true
			}
		}
	}

	var byName []Project
	for _, p := range projects {
		if p.DisplayPath == query {
			return p, true
		}
		if p.Name == query {
			byName = append(byName, p)
		}
	}
	if len(byName) == 1 {
		return byName[0], true
	}
	return Project{}, false
}

// stripDirty returns a copy of projects without resolved dirty flags.
// Dirtiness changes constantly and is never cached.
func stripDirty(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p
		out[i].Worktrees = make([]Worktree, len(p.Worktrees))
		for j, wt := range p.Worktrees {
			wt.Dirty = nil
			out[i].Worktrees[j] = wt
		}
	}
	return out
}
