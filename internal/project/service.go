package project

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/raphi011/wtp/internal/cache"
	"github.com/raphi011/wtp/internal/git"
	"github.com/raphi011/wtp/internal/log"
)

// ErrNotFound is returned when a project or worktree is not known.
var ErrNotFound = errors.New("not found")

// ErrOutsideProject is returned for a worktree path that is not below its
// project directory.
var ErrOutsideProject = errors.New("worktree path outside project")

// Service serves discovery results through the cache.
type Service struct {
	scanner *Scanner
	store   *cache.Store
	git     Git
	opts    Options
}

// NewService returns a service. store may be nil when caching is disabled.
func NewService(scanner *Scanner, store *cache.Store, g Git, opts Options) *Service {
	return &Service{scanner: scanner, store: store, git: g, opts: opts.withDefaults()}
}

// Scanner returns the underlying scanner.
func (s *Service) Scanner() *Scanner {
	return s.scanner
}

func (s *Service) cached() bool {
	return s.opts.Caching && s.store != nil
}

// GetWorktreeFromCacheOrFetch returns the projects below root.
//
// With caching disabled every call scans and the cache is never touched.
// Otherwise a root differing from the last scanned one clears every cache
// key first; cached projects are then served as-is, and a miss scans and
// populates the projects, directories and worktrees keys.
func (s *Service) GetWorktreeFromCacheOrFetch(ctx context.Context, root string) ([]Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if !s.cached() {
		return s.scanner.Scan(ctx, root)
	}

	if err := s.checkRoot(ctx, root); err != nil {
		return nil, err
	}

	projects, ok, err := cache.GetValue[[]Project](s.store, cache.KeyProjects)
	if err != nil {
		return nil, err
	}
	if ok {
		log.FromContext(ctx).Debug("serving projects from cache", "count", len(projects))
		return projects, nil
	}

	projects, err = s.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := s.populate(projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// checkRoot clears the whole cache when root differs from the last scanned root.
func (s *Service) checkRoot(ctx context.Context, root string) error {
	last, ok, err := cache.GetValue[string](s.store, cache.KeyLastProjectDir)
	if err != nil {
		return err
	}
	if ok && last == root {
		return nil
	}

	if ok {
		log.FromContext(ctx).Info("project directory changed, clearing cache", "from", last, "to", root)
	}
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return s.store.Set(cache.KeyLastProjectDir, root)
}

func (s *Service) populate(projects []Project) error {
	projects = stripDirty(projects)
	if err := s.store.Set(cache.KeyProjects, projects); err != nil {
		return err
	}
	if err := s.store.Set(cache.KeyDirectories, Directories(projects)); err != nil {
		return err
	}
	return s.store.Set(cache.KeyWorktrees, Flatten(projects))
}

// Worktrees returns every worktree below root, served from the worktrees
// cache key when present.
func (s *Service) Worktrees(ctx context.Context, root string) ([]ProjectWorktree, error) {
	projects, err := s.GetWorktreeFromCacheOrFetch(ctx, root)
	if err != nil {
		return nil, err
	}
	if !s.cached() {
		return Flatten(projects), nil
	}

	worktrees, ok, err := cache.GetValue[[]ProjectWorktree](s.store, cache.KeyWorktrees)
	if err != nil {
		return nil, err
	}
	if ok {
		return worktrees, nil
	}

	worktrees = Flatten(stripDirty(projects))
	if err := s.store.Set(cache.KeyWorktrees, worktrees); err != nil {
		return nil, err
	}
	return worktrees, nil
}

// AddRequest describes a worktree to create.
type AddRequest struct {
	Project Project
	Path    string
	git.AddOptions
}

// WorktreePath resolves path for a new worktree of the project at projectDir.
// A relative path is taken from the project directory, as git resolves it.
// The result must lie below projectDir and outside the bare repository.
func WorktreePath(projectDir, path string) (string, error) {
	projectDir = filepath.Clean(projectDir)
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, path)
	}
	path = filepath.Clean(path)
	if path == projectDir || !git.Within(projectDir, path) || git.Within(filepath.Join(projectDir, git.BareDir), path) {
		return "", fmt.Errorf("%s: %w %s", path, ErrOutsideProject, projectDir)
	}
	return path, nil
}

// AddWorktree creates a worktree and appends it to the cached project. The
// cache is only updated when git lists the new worktree for the project.
func (s *Service) AddWorktree(ctx context.Context, req AddRequest) (Worktree, error) {
	l := log.FromContext(ctx)
	projectDir := req.Project.FullPath

	path, err := WorktreePath(projectDir, req.Path)
	if err != nil {
		return Worktree{}, err
	}
	if err := s.git.AddWorktree(ctx, projectDir, path, req.AddOptions); err != nil {
		return Worktree{}, err
	}

	wt := Worktree{ID: path, Path: path, Branch: req.Branch}
	worktrees, err := s.scanner.GetRepoWorktrees(ctx, req.Project.BareRepository)
	if err != nil {
		l.Warn("could not read new worktree", "path", path, "err", err)
	}
	i := slices.IndexFunc(worktrees, func(w Worktree) bool { return w.Path == path })
	if i < 0 {
		if s.cached() {
			l.Warn("new worktree not listed by git, cache left unchanged", "path", path)
		}
		return wt, nil
	}
	wt = worktrees[i]

	if !s.cached() {
		return wt, nil
	}

	err = cache.UpdateValue(s.store, cache.KeyProjects, func(projects *[]Project) (*[]Project, error) {
		if projects == nil {
			return nil, nil
		}
		i := slices.IndexFunc(*projects, func(p Project) bool { return p.FullPath == projectDir })
		if i < 0 || slices.ContainsFunc((*projects)[i].Worktrees, func(w Worktree) bool { return w.Path == path }) {
			return nil, nil
		}
		(*projects)[i].Worktrees = append((*projects)[i].Worktrees, wt)
		return projects, nil
	})
	if err != nil {
		return wt, err
	}

	err = cache.UpdateValue(s.store, cache.KeyWorktrees, func(worktrees *[]ProjectWorktree) (*[]ProjectWorktree, error) {
		if worktrees == nil || slices.ContainsFunc(*worktrees, func(w ProjectWorktree) bool { return w.Path == path }) {
			return nil, nil
		}
		*worktrees = append(*worktrees, ProjectWorktree{Worktree: wt, ProjectPath: projectDir, ProjectName: req.Project.Name})
		return worktrees, nil
	})
	return wt, err
}

// RemoveWorktree removes the worktree at path from disk and from the cache.
func (s *Service) RemoveWorktree(ctx context.Context, projectDir, path string, force bool) error {
	if err := s.git.RemoveWorktree(ctx, projectDir, path, force); err != nil {
		return err
	}
	if !s.cached() {
		return nil
	}
	return s.spliceWorktree(path)
}

func (s *Service) spliceWorktree(path string) error {
	err := cache.UpdateValue(s.store, cache.KeyProjects, func(projects *[]Project) (*[]Project, error) {
		if projects == nil {
			return nil, nil
		}
		changed := false
		for i := range *projects {
			n := len((*projects)[i].Worktrees)
			(*projects)[i].Worktrees = slices.DeleteFunc((*projects)[i].Worktrees, func(w Worktree) bool { return w.Path == path })
			changed = changed || n != len((*projects)[i].Worktrees)
		}
		if !changed {
			return nil, nil
		}
		return projects, nil
	})
	if err != nil {
		return err
	}

	return cache.UpdateValue(s.store, cache.KeyWorktrees, func(worktrees *[]ProjectWorktree) (*[]ProjectWorktree, error) {
		if worktrees == nil {
			return nil, nil
		}
		n := len(*worktrees)
		*worktrees = slices.DeleteFunc(*worktrees, func(w ProjectWorktree) bool { return w.Path == path })
		if n == len(*worktrees) {
			return nil, nil
		}
		return worktrees, nil
	})
}

// RemoveProject drops the project at projectDir from the cache. Nothing on
// disk is touched.
func (s *Service) RemoveProject(ctx context.Context, projectDir string) error {
	if !s.cached() {
		return nil
	}

	found := false
	err := cache.UpdateValue(s.store, cache.KeyProjects, func(projects *[]Project) (*[]Project, error) {
		if projects == nil {
			return nil, nil
		}
		n := len(*projects)
		*projects = slices.DeleteFunc(*projects, func(p Project) bool { return p.FullPath == projectDir })
		if n == len(*projects) {
			return nil, nil
		}
		found = true
		return projects, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("project %s: %w", projectDir, ErrNotFound)
	}

	err = cache.UpdateValue(s.store, cache.KeyDirectories, func(dirs *[]string) (*[]string, error) {
		if dirs == nil {
			return nil, nil
		}
		*dirs = slices.DeleteFunc(*dirs, func(d string) bool { return d == projectDir })
		return dirs, nil
	})
	if err != nil {
		return err
	}

	log.FromContext(ctx).Debug("removed project from cache", "path", projectDir)
	return cache.UpdateValue(s.store, cache.KeyWorktrees, func(worktrees *[]ProjectWorktree) (*[]ProjectWorktree, error) {
		if worktrees == nil {
			return nil, nil
		}
		*worktrees = slices.DeleteFunc(*worktrees, func(w ProjectWorktree) bool { return w.ProjectPath == projectDir })
		return worktrees, nil
	})
}

// AddProject reads the project at projectDir and appends it to the cache.
func (s *Service) AddProject(ctx context.Context, projectDir string) (Project, error) {
	p, err := s.scanner.Project(ctx, projectDir)
	if err != nil {
		return Project{}, err
	}
	if !s.cached() {
		return p, nil
	}

	stored := stripDirty([]Project{p})[0]
	err = cache.UpdateValue(s.store, cache.KeyProjects, func(projects *[]Project) (*[]Project, error) {
		if projects == nil {
			return nil, nil
		}
		if slices.ContainsFunc(*projects, func(q Project) bool { return q.FullPath == p.FullPath }) {
			return nil, nil
		}
		*projects = append(*projects, stored)
		return projects, nil
	})
	if err != nil {
		return p, err
	}

	err = cache.UpdateValue(s.store, cache.KeyDirectories, func(dirs *[]string) (*[]string, error) {
		if dirs == nil || slices.Contains(*dirs, p.FullPath) {
			return nil, nil
		}
		*dirs = append(*dirs, p.FullPath)
		return dirs, nil
	})
	if err != nil {
		return p, err
	}

	err = cache.UpdateValue(s.store, cache.KeyWorktrees, func(worktrees *[]ProjectWorktree) (*[]ProjectWorktree, error) {
		if worktrees == nil || slices.ContainsFunc(*worktrees, func(w ProjectWorktree) bool { return w.ProjectPath == p.FullPath }) {
			return nil, nil
		}
		*worktrees = append(*worktrees, Flatten([]Project{stored})...)
		return worktrees, nil
	})
	return p, err
}

// ClearCache removes every cache key.
func (s *Service) ClearCache() error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

// Refresh drops the cached scan results and scans root again.
func (s *Service) Refresh(ctx context.Context, root string) ([]Project, error) {
	if s.cached() {
		if err := s.store.Remove(cache.KeyProjects, cache.KeyWorktrees, cache.KeyDirectories); err != nil {
			return nil, err
		}
	}
	return s.GetWorktreeFromCacheOrFetch(ctx, root)
}
