package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// BareDir is the directory inside a project that holds the bare repository.
const BareDir = ".bare"

// ErrMalformedWorktreeList is returned when a porcelain block has no worktree line.
var ErrMalformedWorktreeList = errors.New("malformed worktree list")

// WorktreeEntry is one worktree from `git worktree list --porcelain`.
type WorktreeEntry struct {
	Path     string
	Branch   string // short name, empty when detached
	Commit   string
	Detached bool
}

// ListWorktrees lists the worktrees of the project at projectDir.
// The bare repository itself is never part of the result.
func ListWorktrees(ctx context.Context, projectDir string) ([]WorktreeEntry, error) {
	out, err := outputGit(ctx, filepath.Join(projectDir, BareDir), "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees of %s: %w", projectDir, err)
	}
	return ParseWorktreeList(string(out), projectDir)
}

// ParseWorktreeList parses porcelain worktree output for the project at
// projectDir. Blocks are separated by blank lines. Entries flagged bare, the
// <project>/.bare path and paths outside the project tree are dropped.
func ParseWorktreeList(output, projectDir string) ([]WorktreeEntry, error) {
	projectDir = filepath.Clean(projectDir)
	bareDir := filepath.Join(projectDir, BareDir)

	var entries []WorktreeEntry
	for i, block := range strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}

		var (
			entry WorktreeEntry
			bare  bool
		)
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "worktree "):
				entry.Path = filepath.Clean(strings.TrimPrefix(line, "worktree "))
			case strings.HasPrefix(line, "HEAD "):
				entry.Commit = strings.TrimPrefix(line, "HEAD ")
			case strings.HasPrefix(line, "branch "):
				entry.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
			case line == "detached":
				entry.Detached = true
			case line == "bare":
				bare = true
			}
		}

		if entry.Path == "" {
			return nil, fmt.Errorf("%w: block %d has no worktree line", ErrMalformedWorktreeList, i+1)
		}
		if bare || entry.Path == bareDir || !Within(projectDir, entry.Path) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Within reports whether path equals root or descends from it.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// AddOptions configures AddWorktree.
type AddOptions struct {
	Branch    string
	NewBranch bool   // create Branch instead of checking out an existing one
	Base      string // start point for a new branch, default HEAD
	Track     bool   // set upstream when Base is a remote-tracking branch
}

// AddWorktree creates a worktree at path. gitDir is the project directory or
// any directory git resolves to the project repository.
func AddWorktree(ctx context.Context, gitDir, path string, opts AddOptions) error {
	if opts.Branch == "" {
		return errors.New("branch name is required")
	}

	args := []string{"worktree", "add"}
	if opts.Track {
		args = append(args, "--track")
	}
	if opts.NewBranch {
		args = append(args, "-b", opts.Branch, path)
		if opts.Base != "" {
			args = append(args, opts.Base)
		}
	} else {
		args = append(args, path, opts.Branch)
	}

	if err := runGit(ctx, gitDir, args...); err != nil {
		return fmt.Errorf("add worktree %s: %w", path, err)
	}
	return nil
}

// RemoveWorktree removes the worktree at path. force discards local changes.
func RemoveWorktree(ctx context.Context, gitDir, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)

	if err := runGit(ctx, gitDir, args...); err != nil {
		return fmt.Errorf("remove worktree %s: %w", path, err)
	}
	return nil
}

// PruneWorktrees prunes stale worktree references
func PruneWorktrees(ctx context.Context, gitDir string) error {
	return runGit(ctx, gitDir, "worktree", "prune")
}
