package project

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/raphi011/wtp/internal/finder"
	"github.com/raphi011/wtp/internal/git"
)

type fakeFinder struct {
	mu    sync.Mutex
	roots map[string][]string
	err   error
	calls int
}

func (f *fakeFinder) Find(_ context.Context, root, _ string) (finder.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return finder.Result{}, f.err
	}
	return finder.Result{Strategy: "fake", Paths: f.roots[root]}, nil
}

func (f *fakeFinder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGit struct {
	mu        sync.Mutex
	bare      map[string]bool // keyed by .bare path; missing means error
	worktrees map[string][]git.WorktreeEntry
	listErr   map[string]error
	dirty     map[string]bool // missing means error
	origins   map[string]string
	removed   []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		bare:      map[string]bool{},
		worktrees: map[string][]git.WorktreeEntry{},
		listErr:   map[string]error{},
		dirty:     map[string]bool{},
		origins:   map[string]string{},
	}
}

func (g *fakeGit) IsBareRepository(_ context.Context, dir string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok, found := g.bare[dir]
	if !found {
		return false, errors.New("fatal: not a git repository")
	}
	return ok, nil
}

func (g *fakeGit) ListWorktrees(_ context.Context, projectDir string) ([]git.WorktreeEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.listErr[projectDir]; err != nil {
		return nil, err
	}
	return slices.Clone(g.worktrees[projectDir]), nil
}

func (g *fakeGit) IsDirty(_ context.Context, path string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	dirty, found := g.dirty[path]
	if !found {
		return false, errors.New("fatal: not a git repository")
	}
	return dirty, nil
}

func (g *fakeGit) GetOriginURL(_ context.Context, repoPath string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	url, ok := g.origins[repoPath]
	if !ok {
		return "", errors.New("error: No such remote 'origin'")
	}
	return url, nil
}

func (g *fakeGit) AddWorktree(_ context.Context, gitDir, path string, opts git.AddOptions) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.worktrees[gitDir] = append(g.worktrees[gitDir], git.WorktreeEntry{Path: path, Branch: opts.Branch, Commit: "f00d"})
	return nil
}

func (g *fakeGit) RemoveWorktree(_ context.Context, gitDir, path string, _ bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.worktrees[gitDir] = slices.DeleteFunc(g.worktrees[gitDir], func(e git.WorktreeEntry) bool { return e.Path == path })
	g.removed = append(g.removed, path)
	return nil
}

// addProject registers a confirmed project with the given worktree branches.
func (g *fakeGit) addProject(dir string, branches ...string) {
	g.bare[dir+"/.bare"] = true
	for i, b := range branches {
		g.worktrees[dir] = append(g.worktrees[dir], git.WorktreeEntry{
			Path:   dir + "/" + b,
			Branch: b,
			Commit: string(rune('a' + i)),
		})
	}
}
