package finder

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob walks the tree in-process.
type Glob struct {
	opts Options
}

// NewGlob creates the in-process strategy.
func NewGlob(opts Options) *Glob {
	return &Glob{opts: opts}
}

func (g *Glob) Name() string { return "glob" }

// Find walks root matching directory names against pattern. Matched
// directories are not descended into. Unreadable directories are skipped.
func (g *Glob) Find(ctx context.Context, root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() || path == root {
			return nil
		}

		name := d.Name()
		if ok, _ := doublestar.Match(pattern, name); ok {
			matches = append(matches, path)
			return fs.SkipDir
		}

		if excluded(name, g.opts.Exclude) {
			return fs.SkipDir
		}
		if !g.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			return fs.SkipDir
		}
		if g.opts.MaxDepth > 0 && depth(root, path) >= g.opts.MaxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
