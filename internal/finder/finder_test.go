package finder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubStrategy struct {
	name  string
	paths []string
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Find(ctx context.Context, root, pattern string) ([]string, error) {
	s.calls++
	return s.paths, s.err
}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

func TestFinder_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &stubStrategy{name: "fd", paths: []string{"/r/b/.bare/", "/r/a/.bare", "", "/r/a/.bare"}}
	fallback := &stubStrategy{name: "glob"}
	f := &Finder{Primary: primary, Fallback: fallback}

	res, err := f.Find(context.Background(), "/r", ".bare")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if res.Strategy != "fd" {
		t.Errorf("Strategy = %q, want fd", res.Strategy)
	}
	if diff := cmp.Diff([]string{"/r/a/.bare", "/r/b/.bare"}, res.Paths); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestFinder_FallsBack(t *testing.T) {
	t.Parallel()

	primary := &stubStrategy{name: "fd", err: ErrFdNotFound}
	fallback := &stubStrategy{name: "glob", paths: []string{"/r/a/.bare"}}
	f := &Finder{Primary: primary, Fallback: fallback}

	res, err := f.Find(context.Background(), "/r", ".bare")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if res.Strategy != "glob" {
		t.Errorf("Strategy = %q, want glob", res.Strategy)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
}

func TestFinder_BothFail(t *testing.T) {
	t.Parallel()

	boom := errors.New("walk failed")
	f := &Finder{
		Primary:  &stubStrategy{name: "fd", err: ErrFdNotFound},
		Fallback: &stubStrategy{name: "glob", err: boom},
	}

	_, err := f.Find(context.Background(), "/r", ".bare")
	if !errors.Is(err, ErrFdNotFound) || !errors.Is(err, boom) {
		t.Errorf("Find() error = %v, want both strategy errors", err)
	}
}

func TestGlob_Find(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, root,
		"a/.bare",
		"group/b/.bare",
		"group/b/.bare/objects", // never descended into
		"node_modules/pkg/.bare",
		"deep/1/2/3/4/5/.bare",
		".hidden/c/.bare",
	)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "defaults",
			opts: Options{MaxDepth: 5, Exclude: []string{"node_modules"}, IncludeHidden: true},
			want: []string{".hidden/c/.bare", "a/.bare", "group/b/.bare"},
		},
		{
			name: "hidden dirs skipped",
			opts: Options{MaxDepth: 5, Exclude: []string{"node_modules"}},
			want: []string{"a/.bare", "group/b/.bare"},
		},
		{
			name: "depth bound",
			opts: Options{MaxDepth: 2, Exclude: []string{"node_modules"}},
			want: []string{"a/.bare"},
		},
		{
			name: "unlimited depth no excludes",
			opts: Options{IncludeHidden: true},
			want: []string{".hidden/c/.bare", "a/.bare", "deep/1/2/3/4/5/.bare", "group/b/.bare", "node_modules/pkg/.bare"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewGlob(tt.opts).Find(context.Background(), root, ".bare")
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			var rel []string
			for _, p := range normalize(got) {
				r, _ := filepath.Rel(root, p)
				rel = append(rel, filepath.ToSlash(r))
			}
			if diff := cmp.Diff(tt.want, rel); diff != "" {
				t.Errorf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGlob_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := NewGlob(Options{}).Find(context.Background(), filepath.Join(t.TempDir(), "missing"), ".bare")
	if err == nil {
		t.Error("Find() on missing root = nil, want error")
	}
}

func TestGlob_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, root, "a/.bare")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGlob(Options{}).Find(ctx, root, ".bare"); !errors.Is(err, context.Canceled) {
		t.Errorf("Find() error = %v, want context.Canceled", err)
	}
}

func TestFd_Args(t *testing.T) {
	t.Parallel()

	f := NewFd(Options{MaxDepth: 4, Exclude: []string{"node_modules", ".git"}}, "")
	got := f.Args("/src", ".bare")
	want := []string{
		"--type", "d", "--glob", "--no-ignore", "--absolute-path", "--color", "never",
		"--hidden",
		"--max-depth", "4",
		"--exclude", "node_modules", "--exclude", ".git",
		"--", ".bare", "/src",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestFd_CandidateOrder(t *testing.T) {
	t.Parallel()

	f := NewFd(Options{}, "/custom/fd")
	var looked []string
	f.lookPath = func(name string) (string, error) {
		looked = append(looked, name)
		return "", errors.New("not found")
	}

	_, err := f.Find(context.Background(), "/src", ".bare")
	if !errors.Is(err, ErrFdNotFound) {
		t.Errorf("Find() error = %v, want ErrFdNotFound", err)
	}
	want := append([]string{"/custom/fd", "fd", "fdfind"}, HomebrewFdPaths...)
	if diff := cmp.Diff(want, looked); diff != "" {
		t.Errorf("lookup order mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenParent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"/r/a/.bare", false},
		{"/r/a/.bare/", false},
		{"/r/.hidden/c/.bare", true},
		{"/r/group/.cache/x/.bare", true},
		{"/r/.bare", false},
	}
	for _, tt := range tests {
		if got := hiddenParent("/r", tt.path); got != tt.want {
			t.Errorf("hiddenParent(/r, %q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// fakeFdScript writes an executable that prints paths the way fd does,
// one per line with a trailing slash.
func fakeFdScript(t *testing.T, paths ...string) string {
	t.Helper()
	script := "#!/bin/sh\n"
	for _, p := range paths {
		script += "echo '" + p + "/'\n"
	}
	bin := filepath.Join(t.TempDir(), "fd")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin
}

// Not parallel: exec of a freshly written binary races with forks from
// parallel tests (ETXTBSY).
func TestFd_HiddenParentsFiltered(t *testing.T) {
	bin := fakeFdScript(t, "/r/a/.bare", "/r/.hidden/c/.bare", "/r/group/.cache/x/.bare")

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "hidden excluded",
			opts: Options{},
			want: []string{"/r/a/.bare"},
		},
		{
			name: "hidden included",
			opts: Options{IncludeHidden: true},
			want: []string{"/r/.hidden/c/.bare", "/r/a/.bare", "/r/group/.cache/x/.bare"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFd(tt.opts, "")
			f.lookPath = func(string) (string, error) { return bin, nil }

			got, err := f.Find(context.Background(), "/r", ".bare")
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, normalize(got)); diff != "" {
				t.Errorf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrategies_SameMatches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, root,
		"a/.bare",
		"group/b/.bare",
		"node_modules/pkg/.bare",
		"deep/1/2/3/4/5/.bare",
		".hidden/c/.bare",
		"group/.cache/d/.bare",
	)

	for _, opts := range []Options{
		{MaxDepth: 5, Exclude: []string{"node_modules"}},
		{MaxDepth: 5, Exclude: []string{"node_modules"}, IncludeHidden: true},
		{MaxDepth: 2},
	} {
		fdPaths, err := NewFd(opts, "").Find(context.Background(), root, ".bare")
		if errors.Is(err, ErrFdNotFound) {
			t.Skip("fd not installed")
		}
		if err != nil {
			t.Fatalf("fd Find(%+v) error = %v", opts, err)
		}
		globPaths, err := NewGlob(opts).Find(context.Background(), root, ".bare")
		if err != nil {
			t.Fatalf("glob Find(%+v) error = %v", opts, err)
		}
		if diff := cmp.Diff(normalize(globPaths), normalize(fdPaths)); diff != "" {
			t.Errorf("fd and glob disagree for %+v (-glob +fd):\n%s", opts, diff)
		}
	}
}
