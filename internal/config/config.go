package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// PushConfig controls "git push" after creating a worktree.
type PushConfig struct {
	Confirm bool `toml:"confirm"`
}

// OpenConfig controls opening worktrees in the editor.
type OpenConfig struct {
	AfterAdd bool `toml:"after_add"`
}

// LogConfig configures the optional JSON log file.
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Config holds the wtp configuration
type Config struct {
	ProjectDir            string            `toml:"project_dir"`
	DataDir               string            `toml:"data_dir"`
	TemplatesDir          string            `toml:"templates_dir"`
	MaxScanningLevels     int               `toml:"max_scanning_levels"`
	EnableWorktreeCaching bool              `toml:"enable_worktree_caching"`
	Editor                string            `toml:"editor"`
	FdPath                string            `toml:"fd_path"`
	Exclude               []string          `toml:"exclude"`
	IncludeHidden         bool              `toml:"include_hidden"`
	Nerdfont              bool              `toml:"nerdfont"`
	StatusBatchSize       int               `toml:"status_batch_size"`
	ScanConcurrency       int               `toml:"scan_concurrency"`
	Push                  PushConfig        `toml:"push"`
	Open                  OpenConfig        `toml:"open"`
	Hosts                 map[string]string `toml:"hosts"` // domain -> github, gitlab, bitbucket
	Log                   LogConfig         `toml:"log"`
}

// Defaults for numeric settings.
const (
	DefaultMaxScanningLevels = 5
	DefaultStatusBatchSize   = 10
	DefaultScanConcurrency   = 15
	DefaultEditor            = "code"
)

// DefaultExclude is the finder exclusion list used when none is configured.
var DefaultExclude = []string{"node_modules", ".git", "Library", ".Trash", "vendor"}

// Default returns the default configuration
func Default() Config {
	return Config{
		MaxScanningLevels:     DefaultMaxScanningLevels,
		EnableWorktreeCaching: true,
		Editor:                DefaultEditor,
		Exclude:               append([]string(nil), DefaultExclude...),
		IncludeHidden:         true,
		StatusBatchSize:       DefaultStatusBatchSize,
		ScanConcurrency:       DefaultScanConcurrency,
		Push:                  PushConfig{Confirm: true},
		Log:                   LogConfig{Level: "info"},
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the config file
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wtp", "config.toml"), nil
}

// Load reads config from ~/.config/wtp/config.toml and applies env overrides.
// Returns Default() if the file doesn't exist (no error).
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return finalize(Default(), os.Getenv)
	}
	return LoadFrom(path, os.Getenv)
}

// LoadFrom reads config from path. getenv supplies environment overrides.
func LoadFrom(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finalize(cfg, getenv)
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return finalize(cfg, getenv)
}

// finalize applies env overrides, validates, expands ~ and fills derived defaults.
func finalize(cfg Config, getenv func(string) string) (Config, error) {
	if v := getenv("WTP_PROJECT_DIR"); v != "" {
		cfg.ProjectDir = v
	}
	if v := getenv("WTP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	for _, p := range []*string{&cfg.ProjectDir, &cfg.DataDir, &cfg.TemplatesDir, &cfg.FdPath, &cfg.Log.File} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return Default(), err
		}
		*p = expanded
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".wtp")
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = filepath.Join(cfg.DataDir, "templates")
	}
	if cfg.Editor == "" {
		cfg.Editor = DefaultEditor
	}

	return cfg, nil
}

// Encode renders the config as TOML.
func (c Config) Encode() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const defaultConfig = `# wtp configuration

# Root directory scanned for projects. A project is a directory containing a
# ".bare" git directory (created by "wtp clone").
# Must be an absolute path or start with ~
# project_dir = "~/Code"

# How deep the finder descends below project_dir
max_scanning_levels = 5

# Serve projects from the cache until it is explicitly invalidated
# (wtp cache clear, wtp projects --refresh, or changing project_dir)
enable_worktree_caching = true

# Editor used by "wtp open" and "wtp add --open"
editor = "code"

# Directories skipped by both finder strategies
exclude = ["node_modules", ".git", "Library", ".Trash", "vendor"]
include_hidden = true

# Use Nerd Font icons for remotes and status
nerdfont = false

# Optional explicit path to the fd binary
# fd_path = "/opt/homebrew/bin/fd"

# Concurrency bounds
status_batch_size = 10
scan_concurrency = 15

[push]
confirm = true

[open]
after_add = false

# Map self-hosted domains to an icon: github, gitlab or bitbucket
# [hosts]
# "git.company.com" = "gitlab"

# [log]
# file = "~/.wtp/wtp.log"
# level = "info"
`

// Init creates a default config file at path.
// If force is true, overwrites existing file.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(defaultConfig), 0o644)
}
