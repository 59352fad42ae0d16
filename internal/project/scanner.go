package project

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/raphi011/wtp/internal/batch"
	"github.com/raphi011/wtp/internal/git"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/remote"
)

// Default batch sizes.
const (
	DefaultScanConcurrency = 15
	DefaultStatusBatchSize = 10
)

var errNotBare = errors.New("not a bare repository")

// Options configures discovery. Values are passed in explicitly by the
// caller; nothing is read from global state.
type Options struct {
	Caching         bool              // serve and maintain the cache
	ScanConcurrency int               // repositories probed at once
	StatusBatchSize int               // git status calls at once
	Hosts           map[string]string // hostname -> remote icon
	Home            string            // shortened to ~ in display paths
}

func (o Options) withDefaults() Options {
	if o.ScanConcurrency < 1 {
		o.ScanConcurrency = DefaultScanConcurrency
	}
	if o.StatusBatchSize < 1 {
		o.StatusBatchSize = DefaultStatusBatchSize
	}
	return o
}

// Scanner runs discovery without any caching.
type Scanner struct {
	finder DirFinder
	git    Git
	opts   Options
}

// NewScanner returns a scanner using f to locate ".bare" directories.
func NewScanner(f DirFinder, g Git, opts Options) *Scanner {
	return &Scanner{finder: f, git: g, opts: opts.withDefaults()}
}

// FindBareRepos returns the projects below root whose ".bare" directory git
// confirms to be a bare repository. Candidates failing the check are
// excluded. A failing origin lookup leaves the project without remotes.
func (s *Scanner) FindBareRepos(ctx context.Context, root string) ([]BareRepository, error) {
	l := log.FromContext(ctx)

	res, err := s.finder.Find(ctx, root, git.BareDir)
	if err != nil {
		return nil, fmt.Errorf("find projects in %s: %w", root, err)
	}

	candidates := make([]string, 0, len(res.Paths))
	for _, p := range res.Paths {
		candidates = append(candidates, filepath.Dir(p))
	}

	repos, failures := batch.Map(ctx, candidates, s.opts.ScanConcurrency, func(ctx context.Context, dir string) (BareRepository, error) {
		ok, err := s.git.IsBareRepository(ctx, filepath.Join(dir, git.BareDir))
		if err != nil {
			return BareRepository{}, err
		}
		if !ok {
			return BareRepository{}, errNotBare
		}
		return s.describe(ctx, dir), nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range failures {
		l.Debug("skipping candidate", "path", f.Item, "reason", f.Err)
	}

	l.Debug("found projects", "root", root, "strategy", res.Strategy, "candidates", len(candidates), "projects", len(repos))
	return repos, nil
}

// describe builds the repository record for dir, including its origin remote.
func (s *Scanner) describe(ctx context.Context, dir string) BareRepository {
	repo := NewBareRepository(dir, s.opts.Home)

	url, err := s.git.GetOriginURL(ctx, dir)
	if err != nil {
		log.FromContext(ctx).Debug("no origin remote", "path", dir, "err", err)
		return repo
	}
	if r, ok := remote.Parse(url, s.opts.Hosts); ok {
		repo.Remotes = append(repo.Remotes, r)
	}
	return repo
}

// GetRepoWorktrees lists the worktrees of repo. Dirty flags are left unresolved.
func (s *Scanner) GetRepoWorktrees(ctx context.Context, repo BareRepository) ([]Worktree, error) {
	entries, err := s.git.ListWorktrees(ctx, repo.FullPath)
	if err != nil {
		return nil, err
	}

	worktrees := make([]Worktree, 0, len(entries))
	for _, e := range entries {
		worktrees = append(worktrees, Worktree{
			ID:     e.Path,
			Path:   e.Path,
			Branch: e.Branch,
			Commit: e.Commit,
		})
	}
	return worktrees, nil
}

// Project builds the full record for a single project directory.
func (s *Scanner) Project(ctx context.Context, dir string) (Project, error) {
	ok, err := s.git.IsBareRepository(ctx, filepath.Join(dir, git.BareDir))
	if err != nil {
		return Project{}, err
	}
	if !ok {
		return Project{}, fmt.Errorf("%s: %w", dir, errNotBare)
	}

	repo := s.describe(ctx, dir)
	worktrees, err := s.GetRepoWorktrees(ctx, repo)
	if err != nil {
		return Project{}, err
	}
	return Project{BareRepository: repo, Worktrees: worktrees}, nil
}

// Scan discovers all projects below root with their worktrees.
// Malformed worktree output aborts the scan; any other per-project failure is
// logged and the project is dropped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Project, error) {
	l := log.FromContext(ctx)

	repos, err := s.FindBareRepos(ctx, root)
	if err != nil {
		return nil, err
	}

	projects, failures := batch.Map(ctx, repos, s.opts.ScanConcurrency, func(ctx context.Context, repo BareRepository) (Project, error) {
		worktrees, err := s.GetRepoWorktrees(ctx, repo)
		if err != nil {
			return Project{}, err
		}
		return Project{BareRepository: repo, Worktrees: worktrees}, nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range failures {
		if errors.Is(f.Err, git.ErrMalformedWorktreeList) {
			return nil, f.Err
		}
		l.Warn("skipping project", "path", f.Item.FullPath, "err", f.Err)
	}
	return projects, nil
}

// ResolveDirty returns a copy of worktrees with Dirty set. Status checks run
// in batches; a failing check is logged and counts as clean.
func (s *Scanner) ResolveDirty(ctx context.Context, worktrees []Worktree) []Worktree {
	l := log.FromContext(ctx)

	out := make([]Worktree, len(worktrees))
	copy(out, worktrees)

	indexes := make([]int, len(out))
	for i := range indexes {
		indexes[i] = i
	}

	failures := batch.Each(ctx, indexes, s.opts.StatusBatchSize, func(ctx context.Context, i int) error {
		dirty, err := s.git.IsDirty(ctx, out[i].Path)
		if err != nil {
			return err
		}
		out[i].Dirty = &dirty
		return nil
	})
	for _, f := range failures {
		l.Warn("status check failed", "path", out[f.Item].Path, "err", f.Err)
		clean := false
		out[f.Item].Dirty = &clean
	}
	return out
}
