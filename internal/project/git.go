package project

import (
	"context"

	"github.com/raphi011/wtp/internal/finder"
	"github.com/raphi011/wtp/internal/git"
)

// Git is the subset of git operations discovery and maintenance need.
type Git interface {
	IsBareRepository(ctx context.Context, dir string) (bool, error)
	ListWorktrees(ctx context.Context, projectDir string) ([]git.WorktreeEntry, error)
	IsDirty(ctx context.Context, path string) (bool, error)
	GetOriginURL(ctx context.Context, repoPath string) (string, error)
	AddWorktree(ctx context.Context, gitDir, path string, opts git.AddOptions) error
	RemoveWorktree(ctx context.Context, gitDir, path string, force bool) error
}

// DirFinder locates directories by name below a root.
type DirFinder interface {
	Find(ctx context.Context, root, pattern string) (finder.Result, error)
}

// CLI implements Git with the git binary.
type CLI struct{}

func (CLI) IsBareRepository(ctx context.Context, dir string) (bool, error) {
	return git.IsBareRepository(ctx, dir)
}

func (CLI) ListWorktrees(ctx context.Context, projectDir string) ([]git.WorktreeEntry, error) {
	return git.ListWorktrees(ctx, projectDir)
}

func (CLI) IsDirty(ctx context.Context, path string) (bool, error) {
	return git.IsDirty(ctx, path)
}

func (CLI) GetOriginURL(ctx context.Context, repoPath string) (string, error) {
	return git.GetOriginURL(ctx, repoPath)
}

func (CLI) AddWorktree(ctx context.Context, gitDir, path string, opts git.AddOptions) error {
	return git.AddWorktree(ctx, gitDir, path, opts)
}

func (CLI) RemoveWorktree(ctx context.Context, gitDir, path string, force bool) error {
	return git.RemoveWorktree(ctx, gitDir, path, force)
}
