package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if !cfg.EnableWorktreeCaching {
		t.Error("caching should be enabled by default")
	}
	if cfg.MaxScanningLevels != DefaultMaxScanningLevels {
		t.Errorf("MaxScanningLevels = %d, want %d", cfg.MaxScanningLevels, DefaultMaxScanningLevels)
	}
	if !cfg.Push.Confirm {
		t.Error("push confirmation should be on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"), func(k string) string {
		if k == "WTP_DATA_DIR" {
			return dataDir
		}
		return ""
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.DataDir != dataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dataDir)
	}
	if cfg.TemplatesDir != filepath.Join(dataDir, "templates") {
		t.Errorf("TemplatesDir = %q", cfg.TemplatesDir)
	}
}

func TestLoadFrom_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
project_dir = "/src"
data_dir = "/var/wtp"
max_scanning_levels = 3
enable_worktree_caching = false
editor = "zed"
exclude = ["node_modules"]

[push]
confirm = false

[open]
after_add = true

[hosts]
"git.corp.example" = "gitlab"
`)

	cfg, err := LoadFrom(path, noEnv)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.ProjectDir != "/src" {
		t.Errorf("ProjectDir = %q", cfg.ProjectDir)
	}
	if cfg.MaxScanningLevels != 3 {
		t.Errorf("MaxScanningLevels = %d", cfg.MaxScanningLevels)
	}
	if cfg.EnableWorktreeCaching {
		t.Error("EnableWorktreeCaching should be false")
	}
	if cfg.Editor != "zed" {
		t.Errorf("Editor = %q", cfg.Editor)
	}
	if cfg.Push.Confirm {
		t.Error("Push.Confirm should be false")
	}
	if !cfg.Open.AfterAdd {
		t.Error("Open.AfterAdd should be true")
	}
	if cfg.Hosts["git.corp.example"] != "gitlab" {
		t.Errorf("Hosts = %v", cfg.Hosts)
	}
	// Unset keys keep their defaults
	if cfg.StatusBatchSize != DefaultStatusBatchSize {
		t.Errorf("StatusBatchSize = %d, want default", cfg.StatusBatchSize)
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `project_dir = "/src"
data_dir = "/var/wtp"`)
	cfg, err := LoadFrom(path, func(k string) string {
		if k == "WTP_PROJECT_DIR" {
			return "/override"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.ProjectDir != "/override" {
		t.Errorf("ProjectDir = %q, want /override", cfg.ProjectDir)
	}
}

func TestLoadFrom_TildeExpansion(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := writeConfig(t, `project_dir = "~/Code"
data_dir = "/var/wtp"`)
	cfg, err := LoadFrom(path, noEnv)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if want := filepath.Join(home, "Code"); cfg.ProjectDir != want {
		t.Errorf("ProjectDir = %q, want %q", cfg.ProjectDir, want)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"relative project dir", `project_dir = "code"`, "project_dir must be absolute"},
		{"zero depth", `max_scanning_levels = 0`, "max_scanning_levels"},
		{"zero batch", `status_batch_size = 0`, "status_batch_size"},
		{"unknown host icon", "[hosts]\n\"x.io\" = \"svn\"", "invalid icon for host x.io"},
		{"bad exclude pattern", `exclude = ["[abc"]`, "invalid exclude[0]"},
		{"broken toml", `project_dir = `, "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadFrom(writeConfig(t, tt.content), noEnv)
			if err == nil {
				t.Fatal("LoadFrom() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"", false},
		{"~", false},
		{"~/Code", false},
		{"/abs/path", false},
		{".", true},
		{"../up", true},
		{"relative", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			err := ValidatePath(tt.path, "project_dir")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wtp", "config.toml")
	if err := Init(path, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	// The generated file must parse and validate
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	if cfg.MaxScanningLevels != DefaultMaxScanningLevels {
		t.Errorf("MaxScanningLevels = %d", cfg.MaxScanningLevels)
	}

	if err := Init(path, false); err == nil {
		t.Error("Init() over existing file should fail without force")
	}
	if err := Init(path, true); err != nil {
		t.Errorf("Init(force) error = %v", err)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ProjectDir = "/src"
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(out, `project_dir = "/src"`) {
		t.Errorf("Encode() = %q, want project_dir line", out)
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	if got := FromContext(context.Background()); got.MaxScanningLevels != DefaultMaxScanningLevels {
		t.Errorf("FromContext(empty) = %+v, want defaults", got)
	}

	cfg := Default()
	cfg.ProjectDir = "/code"
	if got := FromContext(WithConfig(context.Background(), &cfg)); got != &cfg {
		t.Errorf("FromContext() = %p, want %p", got, &cfg)
	}
}
