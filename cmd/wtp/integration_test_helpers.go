//go:build integration

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	osexec "os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// setupSourceRepo creates a regular repo with a main branch and one commit
// in dir/name. Returns its absolute path.
func setupSourceRepo(t *testing.T, dir, name string) string {
	t.Helper()

	repoPath := filepath.Join(dir, name)
	cmds := [][]string{
		{"git", "init", "-b", "main", repoPath},
		{"git", "-C", repoPath, "config", "user.email", "test@test.com"},
		{"git", "-C", repoPath, "config", "user.name", "Test User"},
		{"git", "-C", repoPath, "config", "commit.gpgsign", "false"},
	}
	for _, args := range cmds {
		if out, err := osexec.Command(args[0], args[1:]...).CombinedOutput(); err != nil {
			t.Fatalf("failed to run %v: %v\n%s", args, err, out)
		}
	}

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# "+name+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	for _, args := range [][]string{
		{"git", "-C", repoPath, "add", "README.md"},
		{"git", "-C", repoPath, "commit", "-m", "Initial commit"},
	} {
		if out, err := osexec.Command(args[0], args[1:]...).CombinedOutput(); err != nil {
			t.Fatalf("failed to run %v: %v\n%s", args, err, out)
		}
	}
	return repoPath
}

// testEnv is a project root, a data dir and a source repo to clone from.
type testEnv struct {
	cfg    *config.Config
	root   string
	source string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := resolvePath(t, t.TempDir())
	root := filepath.Join(tmpDir, "code")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.ProjectDir = root
	cfg.DataDir = filepath.Join(tmpDir, "data")
	cfg.TemplatesDir = filepath.Join(tmpDir, "templates")
	cfg.Editor = "true"
	cfg.Push.Confirm = false

	return &testEnv{
		cfg:    &cfg,
		root:   root,
		source: setupSourceRepo(t, tmpDir, "source"),
	}
}

// testContext returns a context carrying cfg, a silent logger and a printer
// writing into the returned buffer.
func testContext(cfg *config.Config) (context.Context, *bytes.Buffer) {
	var out bytes.Buffer
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = log.WithLogger(ctx, log.New(io.Discard, false, false))
	ctx = output.WithPrinter(ctx, &out)
	return ctx, &out
}

// run executes cmd with args and returns what it printed to stdout.
func (e *testEnv) run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	ctx, out := testContext(e.cfg)
	cmd.SetContext(ctx)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	out, err := e.run(t, cmd, args...)
	if err != nil {
		t.Fatalf("%s %v failed: %v", cmd.Name(), args, err)
	}
	return out
}

// clone clones the source repo into the project root as name.
func (e *testEnv) clone(t *testing.T, name string) string {
	t.Helper()
	e.mustRun(t, newCloneCmd(), "file://"+e.source, name)
	return filepath.Join(e.root, name)
}

// runExternal runs a command and returns its combined output.
func runExternal(name string, args ...string) (string, error) {
	out, err := osexec.Command(name, args...).CombinedOutput()
	return string(out), err
}
