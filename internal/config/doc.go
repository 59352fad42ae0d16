// Package config handles loading and validation of wtp configuration.
//
// Configuration is read from ~/.config/wtp/config.toml with environment
// variable overrides for directory settings. It is read once per command and
// handed to components explicitly; nothing reads it from package state.
//
// # Configuration Sources (highest priority first)
//
//   - --dir flag: search root for a single invocation
//   - WTP_PROJECT_DIR env var: search root for bare repositories
//   - WTP_DATA_DIR env var: directory holding cache.json and logs
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - project_dir: Root scanned for projects (directories containing .bare)
//   - max_scanning_levels: Depth bound for both finder strategies (default 5)
//   - enable_worktree_caching: Serve projects from cache (default true)
//   - editor: Application used by "wtp open" and "wtp add --open"
//   - exclude / include_hidden: Finder exclusion list and hidden-dir rule
//
// # Push and Open Behaviour
//
//	[push]
//	confirm = true    # ask before "git push -u" after "wtp add --push"
//
//	[open]
//	after_add = false # open new worktrees in the editor
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
