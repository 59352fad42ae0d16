//go:build integration

package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/wtp/internal/cache"
	"github.com/raphi011/wtp/internal/history"
	"github.com/raphi011/wtp/internal/project"
)

func decodeProjects(t *testing.T, out string) []project.Project {
	t.Helper()
	var projects []project.Project
	if err := json.Unmarshal([]byte(out), &projects); err != nil {
		t.Fatalf("decode projects: %v\n%s", err, out)
	}
	return projects
}

func decodeWorktrees(t *testing.T, out string) []project.ProjectWorktree {
	t.Helper()
	var worktrees []project.ProjectWorktree
	if err := json.Unmarshal([]byte(out), &worktrees); err != nil {
		t.Fatalf("decode worktrees: %v\n%s", err, out)
	}
	return worktrees
}

// TestClone_AppendsToCache tests cloning after a scan.
//
// Scenario: User lists projects (empty), then runs `wtp clone <url> demo`
// Expected: Bare layout on disk and the project is in the cache without a rescan
func TestClone_AppendsToCache(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if got := decodeProjects(t, env.mustRun(t, newProjectsCmd(), "--json")); len(got) != 0 {
		t.Fatalf("expected no projects, got %d", len(got))
	}

	out := env.mustRun(t, newCloneCmd(), "file://"+env.source, "demo")
	projectDir := filepath.Join(env.root, "demo")
	if strings.TrimSpace(out) != projectDir {
		t.Errorf("clone printed %q, want %q", out, projectDir)
	}

	if _, err := os.Stat(filepath.Join(projectDir, ".bare", "HEAD")); err != nil {
		t.Errorf(".bare should hold a bare repository: %v", err)
	}

	projects, ok, err := cache.GetValue[[]project.Project](cache.Open(env.cfg.DataDir), cache.KeyProjects)
	if err != nil || !ok {
		t.Fatalf("cached projects: ok=%v err=%v", ok, err)
	}
	if len(projects) != 1 || projects[0].FullPath != projectDir {
		t.Errorf("cached projects = %+v", projects)
	}
}

// TestClone_ExistingTarget tests cloning onto an existing directory.
//
// Scenario: User runs `wtp clone <url> demo` twice
// Expected: Second clone fails and leaves the first intact
func TestClone_ExistingTarget(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	projectDir := env.clone(t, "demo")
	if _, err := env.run(t, newCloneCmd(), "file://"+env.source, "demo"); err == nil {
		t.Fatal("second clone should fail")
	}
	if _, err := os.Stat(filepath.Join(projectDir, ".bare")); err != nil {
		t.Errorf("existing project damaged: %v", err)
	}
}

// TestProjects_ScansAndCaches tests the read-through cache.
//
// Scenario: User clones a project by hand, then runs `wtp projects` twice
// Expected: First call scans, second serves the cache even after a new clone
func TestProjects_ScansAndCaches(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.clone(t, "alpha")

	projects := decodeProjects(t, env.mustRun(t, newProjectsCmd(), "--json"))
	if len(projects) != 1 || projects[0].Name != "alpha" {
		t.Fatalf("projects = %+v", projects)
	}

	// A project appearing on disk behind wtp's back is not seen until refresh.
	if out, err := runExternal("git", "clone", "--bare", env.source, filepath.Join(env.root, "beta", ".bare")); err != nil {
		t.Fatalf("manual clone: %v\n%s", err, out)
	}

	if got := decodeProjects(t, env.mustRun(t, newProjectsCmd(), "--json")); len(got) != 1 {
		t.Errorf("cached projects = %d, want 1", len(got))
	}
	if got := decodeProjects(t, env.mustRun(t, newProjectsCmd(), "--json", "--refresh")); len(got) != 2 {
		t.Errorf("refreshed projects = %d, want 2", len(got))
	}
}

// TestProjects_RootChangeClearsCache tests switching project_dir.
//
// Scenario: User scans one root, then another
// Expected: lastProjectDir follows the root and stale projects are gone
func TestProjects_RootChangeClearsCache(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.clone(t, "alpha")
	env.mustRun(t, newProjectsCmd(), "--json")

	other := filepath.Join(filepath.Dir(env.root), "other")
	if err := os.MkdirAll(other, 0o755); err != nil {
		t.Fatal(err)
	}
	env.cfg.ProjectDir = other

	if got := decodeProjects(t, env.mustRun(t, newProjectsCmd(), "--json")); len(got) != 0 {
		t.Errorf("projects after root change = %+v", got)
	}

	last, _, err := cache.GetValue[string](cache.Open(env.cfg.DataDir), cache.KeyLastProjectDir)
	if err != nil {
		t.Fatal(err)
	}
	if last != other {
		t.Errorf("lastProjectDir = %q, want %q", last, other)
	}
}

// TestAddRemove_WorktreeLifecycle tests adding and removing a worktree.
//
// Scenario: User runs `wtp add demo topic -b --base main`, lists, then removes it
// Expected: Worktree created inside the project, listed from cache, then gone
func TestAddRemove_WorktreeLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	projectDir := env.clone(t, "demo")
	env.mustRun(t, newProjectsCmd(), "--json")

	out := env.mustRun(t, newAddCmd(), "demo", "feature/topic", "-b", "--base", "main")
	wtPath := filepath.Join(projectDir, "feature-topic")
	if strings.TrimSpace(out) != wtPath {
		t.Errorf("add printed %q, want %q", out, wtPath)
	}
	if _, err := os.Stat(filepath.Join(wtPath, "README.md")); err != nil {
		t.Errorf("worktree not checked out: %v", err)
	}

	worktrees := decodeWorktrees(t, env.mustRun(t, newWorktreesCmd(), "--json", "--dirty"))
	if len(worktrees) != 1 {
		t.Fatalf("worktrees = %+v", worktrees)
	}
	wt := worktrees[0]
	if wt.Path != wtPath || wt.Branch != "feature/topic" || wt.ProjectName != "demo" {
		t.Errorf("worktree = %+v", wt)
	}
	if wt.Dirty == nil || *wt.Dirty {
		t.Errorf("Dirty = %v, want resolved clean", wt.Dirty)
	}

	h, err := history.Load(history.Path(env.cfg.DataDir))
	if err != nil {
		t.Fatal(err)
	}
	if h.FindByPath(wtPath) == nil {
		t.Error("add should record the worktree in history")
	}

	env.mustRun(t, newRemoveCmd(), "demo:feature/topic")
	if _, err := os.Stat(wtPath); !os.IsNotExist(err) {
		t.Errorf("worktree directory still exists: %v", err)
	}
	if got := decodeWorktrees(t, env.mustRun(t, newWorktreesCmd(), "--json")); len(got) != 0 {
		t.Errorf("worktrees after remove = %+v", got)
	}

	h, err = history.Load(history.Path(env.cfg.DataDir))
	if err != nil {
		t.Fatal(err)
	}
	if h.FindByPath(wtPath) != nil {
		t.Error("remove should drop the history entry")
	}
}

// TestRemove_DirtyNeedsForce tests removing a worktree with changes.
//
// Scenario: User adds a worktree, writes a file, runs `wtp remove` then `wtp remove -f`
// Expected: First remove fails, forced remove succeeds
func TestRemove_DirtyNeedsForce(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	projectDir := env.clone(t, "demo")
	env.mustRun(t, newAddCmd(), "demo", "main")

	wtPath := filepath.Join(projectDir, "main")
	if err := os.WriteFile(filepath.Join(wtPath, "scratch.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := env.run(t, newRemoveCmd(), wtPath); err == nil {
		t.Fatal("remove of dirty worktree without --force should fail")
	}
	env.mustRun(t, newRemoveCmd(), wtPath, "--force")
	if _, err := os.Stat(wtPath); !os.IsNotExist(err) {
		t.Errorf("worktree directory still exists: %v", err)
	}
}

// TestAdd_UnknownProject tests adding to a project that does not exist.
//
// Scenario: User runs `wtp add nope main`
// Expected: ErrNotFound
func TestAdd_UnknownProject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.run(t, newAddCmd(), "nope", "main")
	if !errors.Is(err, project.ErrNotFound) {
		t.Errorf("add error = %v, want ErrNotFound", err)
	}
}

// TestAdd_RelativePath tests adding a worktree with a relative --path.
//
// Scenario: User runs `wtp add demo topic -b --path wt/topic` from another directory
// Expected: Worktree created below the project and cached under that path
func TestAdd_RelativePath(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	projectDir := env.clone(t, "demo")
	env.mustRun(t, newProjectsCmd(), "--json")

	out := env.mustRun(t, newAddCmd(), "demo", "topic", "-b", "--base", "main", "--path", "wt/topic")
	wtPath := filepath.Join(projectDir, "wt", "topic")
	if strings.TrimSpace(out) != wtPath {
		t.Errorf("add printed %q, want %q", out, wtPath)
	}
	if _, err := os.Stat(filepath.Join(wtPath, "README.md")); err != nil {
		t.Errorf("worktree not checked out: %v", err)
	}

	worktrees := decodeWorktrees(t, env.mustRun(t, newWorktreesCmd(), "--json"))
	if len(worktrees) != 1 || worktrees[0].Path != wtPath {
		t.Errorf("cached worktrees = %+v, want one at %s", worktrees, wtPath)
	}
}

// TestAdd_PathOutsideProject tests adding a worktree outside the project.
//
// Scenario: User runs `wtp add demo x -b --path <root>/elsewhere`
// Expected: ErrOutsideProject, nothing created, cache unchanged
func TestAdd_PathOutsideProject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.clone(t, "demo")
	env.mustRun(t, newProjectsCmd(), "--json")

	elsewhere := filepath.Join(env.root, "elsewhere")
	_, err := env.run(t, newAddCmd(), "demo", "x", "-b", "--base", "main", "--path", elsewhere)
	if !errors.Is(err, project.ErrOutsideProject) {
		t.Fatalf("add error = %v, want ErrOutsideProject", err)
	}
	if _, err := os.Stat(elsewhere); !os.IsNotExist(err) {
		t.Errorf("%s should not exist: %v", elsewhere, err)
	}
	if got := decodeWorktrees(t, env.mustRun(t, newWorktreesCmd(), "--json")); len(got) != 0 {
		t.Errorf("cached worktrees = %+v, want none", got)
	}
}

// TestAdd_Push tests pushing a new branch without confirmation.
//
// Scenario: push.confirm=false, user runs `wtp add demo pushed -b --push`
// Expected: Branch exists in the source repository
func TestAdd_Push(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.clone(t, "demo")
	env.mustRun(t, newAddCmd(), "demo", "pushed", "-b", "--base", "main", "--push")

	if out, err := runExternal("git", "-C", env.source, "rev-parse", "--verify", "refs/heads/pushed"); err != nil {
		t.Errorf("branch not pushed: %v\n%s", err, out)
	}
}

// TestForget_DropsProject tests forgetting a project.
//
// Scenario: User runs `wtp forget demo`
// Expected: Project gone from the cache, files untouched
func TestForget_DropsProject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	projectDir := env.clone(t, "demo")
	env.mustRun(t, newProjectsCmd(), "--json")
	env.mustRun(t, newForgetCmd(), "demo")

	if got := decodeProjects(t, env.mustRun(t, newProjectsCmd(), "--json")); len(got) != 0 {
		t.Errorf("projects after forget = %+v", got)
	}
	if _, err := os.Stat(projectDir); err != nil {
		t.Errorf("forget must not delete files: %v", err)
	}
}

// TestBranches_ListsRemoteBranches tests listing remote branches.
//
// Scenario: User runs `wtp branches demo --fetch --json`
// Expected: origin/main is listed
func TestBranches_ListsRemoteBranches(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.clone(t, "demo")
	var branches []string
	out := env.mustRun(t, newBranchesCmd(), "demo", "--fetch", "--json")
	if err := json.Unmarshal([]byte(out), &branches); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(branches) == 0 || branches[0] != "origin/main" {
		t.Errorf("branches = %v", branches)
	}
}

// TestOpen_PrintsAndRecords tests `wtp open -n`.
//
// Scenario: User runs `wtp open demo:main -n`
// Expected: Path printed and recorded in history
func TestOpen_PrintsAndRecords(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	projectDir := env.clone(t, "demo")
	env.mustRun(t, newAddCmd(), "demo", "main")

	out := env.mustRun(t, newOpenCmd(), "demo:main", "-n")
	want := filepath.Join(projectDir, "main")
	if strings.TrimSpace(out) != want {
		t.Errorf("open printed %q, want %q", out, want)
	}

	recent, err := history.GetMostRecent(history.Path(env.cfg.DataDir))
	if err != nil {
		t.Fatal(err)
	}
	if recent != want {
		t.Errorf("most recent = %q, want %q", recent, want)
	}
}

// TestCache_ShowAndClear tests cache inspection and invalidation.
//
// Scenario: User scans, runs `wtp cache show --json`, then `wtp cache clear`
// Expected: Summary reflects the scan, clear empties the cache
func TestCache_ShowAndClear(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.clone(t, "demo")
	env.mustRun(t, newProjectsCmd(), "--json")

	var summary cacheSummary
	out := env.mustRun(t, newCacheCmd(), "show", "--json")
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if summary.Projects != 1 || summary.LastProjectDir != env.root {
		t.Errorf("summary = %+v", summary)
	}

	env.mustRun(t, newCacheCmd(), "clear")
	keys, err := cache.Open(env.cfg.DataDir).Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("keys after clear = %v", keys)
	}
}

// TestTemplateNew_NeverOverwrites tests creating files from a template.
//
// Scenario: User runs `wtp template new note -o dir` twice
// Expected: note.txt then "note 2.txt", both rendered
func TestTemplateNew_NeverOverwrites(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if err := os.MkdirAll(env.cfg.TemplatesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.cfg.TemplatesDir, "note.txt"), []byte("# {{.Name}}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	first := strings.TrimSpace(env.mustRun(t, newTemplateCmd(), "new", "note", "-o", dir))
	second := strings.TrimSpace(env.mustRun(t, newTemplateCmd(), "new", "note", "-o", dir))

	if first != filepath.Join(dir, "note.txt") || second != filepath.Join(dir, "note 2.txt") {
		t.Errorf("created %q and %q", first, second)
	}
	content, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# note\n" {
		t.Errorf("content = %q", content)
	}
}
