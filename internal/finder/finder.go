// Package finder locates directories by name below a search root.
//
// Two strategies exist: an external fd binary and an in-process walk. A
// [Finder] runs its primary strategy and falls back to the secondary one only
// when the primary fails; the [Result] records which variant produced the
// paths. Both apply the same exclusion list, hidden-directory rule and depth
// bound, but no attempt is made to reconcile differences between them.
package finder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/raphi011/wtp/internal/log"
)

// Strategy finds directories whose name matches pattern below root.
type Strategy interface {
	Name() string
	Find(ctx context.Context, root, pattern string) ([]string, error)
}

// Options are shared by both strategies.
type Options struct {
	MaxDepth      int      // levels below root; < 1 means unlimited
	Exclude       []string // directory-name patterns never descended into
	IncludeHidden bool     // descend into dot-directories
}

// Result is the outcome of a Find call.
type Result struct {
	Strategy string
	Paths    []string
}

// Finder runs Primary, falling back to Fallback on failure.
type Finder struct {
	Primary  Strategy
	Fallback Strategy
}

// New returns a Finder preferring fd and falling back to the glob walk.
func New(opts Options, fdPath string) *Finder {
	return &Finder{
		Primary:  NewFd(opts, fdPath),
		Fallback: NewGlob(opts),
	}
}

// Find returns cleaned, sorted, de-duplicated absolute paths.
func (f *Finder) Find(ctx context.Context, root, pattern string) (Result, error) {
	l := log.FromContext(ctx)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("resolve search root: %w", err)
	}

	var errs []error
	for _, s := range []Strategy{f.Primary, f.Fallback} {
		if s == nil {
			continue
		}
		paths, err := s.Find(ctx, absRoot, pattern)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			l.Debug("finder strategy failed", "strategy", s.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		l.Debug("finder strategy used", "strategy", s.Name(), "root", absRoot, "matches", len(paths))
		return Result{Strategy: s.Name(), Paths: normalize(paths)}, nil
	}

	if len(errs) == 0 {
		return Result{}, errors.New("no finder strategy configured")
	}
	return Result{}, fmt.Errorf("find %q under %s: %w", pattern, absRoot, errors.Join(errs...))
}

func normalize(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, filepath.Clean(p))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// excluded reports whether a directory name matches an exclusion pattern.
func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// hiddenParent reports whether a directory between root and path, path
// itself excluded, is a dot-directory.
func hiddenParent(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, part := range parts[:len(parts)-1] {
		if strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
