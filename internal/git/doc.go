// Package git wraps the git CLI operations wtp needs for bare-repository
// projects.
//
// Everything shells out to git through [github.com/raphi011/wtp/internal/cmd]
// so user configuration (SSH keys, credential helpers, aliases) applies and
// every call is echoed under --verbose.
//
// A project is a directory holding a bare repository in ".bare" plus a ".git"
// file pointing at it. Worktrees live anywhere below the project directory.
//
// # Worktrees
//
//   - [ListWorktrees] and [ParseWorktreeList]: porcelain listing, filtered to
//     worktrees inside the project tree
//   - [AddWorktree], [RemoveWorktree], [PruneWorktrees]
//
// # Repositories
//
//   - [IsBareRepository], [IsDirty], [GetOriginURL]
//   - [CloneBare]: set up a new project from a remote URL
//   - [ListRemoteBranches], [Fetch], [Push], [SetConfig]
package git
