package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsBareRepository reports whether dir is a bare git repository.
func IsBareRepository(ctx context.Context, dir string) (bool, error) {
	out, err := trimmedGit(ctx, dir, "rev-parse", "--is-bare-repository")
	if err != nil {
		return false, err
	}
	return out == "true", nil
}

// IsDirty reports whether the worktree at path has uncommitted changes or
// untracked files.
func IsDirty(ctx context.Context, path string) (bool, error) {
	out, err := trimmedGit(ctx, path, "status", "-s")
	if err != nil {
		return false, fmt.Errorf("status of %s: %w", path, err)
	}
	return out != "", nil
}

// GetOriginURL gets the origin URL for a repository
func GetOriginURL(ctx context.Context, repoPath string) (string, error) {
	url, err := trimmedGit(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to get origin URL: %w", err)
	}
	return url, nil
}

// SetConfig sets a repository-local config value.
func SetConfig(ctx context.Context, repoPath, key, value string) error {
	return runGit(ctx, repoPath, "config", key, value)
}

// ErrInvalidBranchName is returned for names git refuses as branch names.
var ErrInvalidBranchName = errors.New("invalid branch name")

// CheckBranchName validates name with git check-ref-format --branch.
func CheckBranchName(ctx context.Context, name string) error {
	if err := runGit(ctx, "", "check-ref-format", "--branch", name); err != nil {
		return fmt.Errorf("%w %q", ErrInvalidBranchName, name)
	}
	return nil
}

// Fetch fetches all branches from origin.
func Fetch(ctx context.Context, repoPath string) error {
	if err := runGit(ctx, repoPath, "fetch", "origin"); err != nil {
		return fmt.Errorf("fetch origin: %w", err)
	}
	return nil
}

// Push pushes branch to origin and sets it as upstream.
func Push(ctx context.Context, worktreePath, branch string) error {
	if err := runGit(ctx, worktreePath, "push", "-u", "origin", branch); err != nil {
		return fmt.Errorf("push %s: %w", branch, err)
	}
	return nil
}

// CloneBare sets up a project at projectDir: a bare clone of url in .bare, a
// .git file pointing to it and a fetch refspec so remote branches are tracked.
func CloneBare(ctx context.Context, url, projectDir string) error {
	if _, err := os.Stat(projectDir); err == nil {
		return fmt.Errorf("%s already exists", projectDir)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	bareDir := filepath.Join(projectDir, BareDir)
	if err := runGit(ctx, "", "clone", "--bare", url, bareDir); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}

	gitFile := filepath.Join(projectDir, ".git")
	if err := os.WriteFile(gitFile, []byte("gitdir: ./"+BareDir+"\n"), 0o644); err != nil {
		return fmt.Errorf("write .git file: %w", err)
	}

	if err := SetConfig(ctx, projectDir, "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"); err != nil {
		return fmt.Errorf("configure fetch refspec: %w", err)
	}
	return Fetch(ctx, projectDir)
}

// ListRemoteBranches returns the remote-tracking branches of a repository.
func ListRemoteBranches(ctx context.Context, repoPath string) ([]string, error) {
	out, err := outputGit(ctx, repoPath, "branch", "-r")
	if err != nil {
		return nil, fmt.Errorf("list remote branches: %w", err)
	}
	return ParseRemoteBranches(string(out)), nil
}

// ParseRemoteBranches parses `git branch -r` output, skipping symbolic
// HEAD aliases such as "origin/HEAD -> origin/main".
func ParseRemoteBranches(output string) []string {
	var branches []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, " -> ") {
			continue
		}
		branches = append(branches, line)
	}
	return branches
}
