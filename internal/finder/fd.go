package finder

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/raphi011/wtp/internal/cmd"
)

// HomebrewFdPaths are tried when fd is not on PATH.
var HomebrewFdPaths = []string{"/opt/homebrew/bin/fd", "/usr/local/bin/fd"}

// ErrFdNotFound is returned when no fd binary could be located.
var ErrFdNotFound = errors.New("fd binary not found")

// Fd runs the external fd binary.
type Fd struct {
	opts       Options
	candidates []string
	lookPath   func(string) (string, error)
}

// NewFd creates the fd strategy. An explicit path is tried before PATH lookup.
func NewFd(opts Options, explicit string) *Fd {
	var candidates []string
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "fd", "fdfind")
	candidates = append(candidates, HomebrewFdPaths...)
	return &Fd{opts: opts, candidates: candidates, lookPath: exec.LookPath}
}

func (f *Fd) Name() string { return "fd" }

// Args builds the fd argument list for a search.
func (f *Fd) Args(root, pattern string) []string {
	args := []string{"--type", "d", "--glob", "--no-ignore", "--absolute-path", "--color", "never"}
	if f.opts.IncludeHidden || strings.HasPrefix(pattern, ".") {
		args = append(args, "--hidden")
	}
	if f.opts.MaxDepth > 0 {
		args = append(args, "--max-depth", strconv.Itoa(f.opts.MaxDepth))
	}
	for _, x := range f.opts.Exclude {
		args = append(args, "--exclude", x)
	}
	return append(args, "--", pattern, root)
}

// Find tries each candidate binary in order; the first that runs wins.
func (f *Fd) Find(ctx context.Context, root, pattern string) ([]string, error) {
	var lastErr error = ErrFdNotFound
	for _, c := range f.candidates {
		bin, err := f.lookPath(c)
		if err != nil {
			continue
		}
		out, err := cmd.OutputContext(ctx, "", bin, f.Args(root, pattern)...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		return f.filter(root, strings.Split(strings.TrimSpace(string(out)), "\n")), nil
	}
	return nil, lastErr
}

// filter drops matches below a dot-directory unless hidden directories are
// included. fd needs --hidden to match a dot-named pattern at all, so the
// walk into hidden parents is undone here.
func (f *Fd) filter(root string, paths []string) []string {
	if f.opts.IncludeHidden {
		return paths
	}
	return slices.DeleteFunc(paths, func(p string) bool {
		return hiddenParent(root, strings.TrimSpace(p))
	})
}
