package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphi011/wtp/internal/cache"
	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/finder"
	"github.com/raphi011/wtp/internal/history"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/project"
	"github.com/raphi011/wtp/internal/ui/progress"
)

var errNoProjectDir = errors.New("no project directory: set project_dir in the config, WTP_PROJECT_DIR, or pass --dir")

// projectRoot returns the directory scanned for projects.
func projectRoot(cfg *config.Config) (string, error) {
	if cfg.ProjectDir == "" {
		return "", errNoProjectDir
	}
	return cfg.ProjectDir, nil
}

// projectOptions maps config settings onto discovery options.
func projectOptions(cfg *config.Config) project.Options {
	home, _ := os.UserHomeDir()
	return project.Options{
		Caching:         cfg.EnableWorktreeCaching,
		ScanConcurrency: cfg.ScanConcurrency,
		StatusBatchSize: cfg.StatusBatchSize,
		Hosts:           cfg.Hosts,
		Home:            home,
	}
}

// newService wires the finder, git and cache into a project service.
func newService(cfg *config.Config) *project.Service {
	opts := projectOptions(cfg)
	f := finder.New(finder.Options{
		MaxDepth:      cfg.MaxScanningLevels,
		Exclude:       cfg.Exclude,
		IncludeHidden: cfg.IncludeHidden,
	}, cfg.FdPath)
	g := project.CLI{}
	return project.NewService(project.NewScanner(f, g, opts), cache.Open(cfg.DataDir), g, opts)
}

// loadProjects serves projects from the cache or scans root behind a spinner.
func loadProjects(ctx context.Context, svc *project.Service, root string, refresh bool) ([]project.Project, error) {
	projects, err := progress.Run(ctx, "Scanning "+root, func(ctx context.Context) ([]project.Project, error) {
		if refresh {
			return svc.Refresh(ctx, root)
		}
		return svc.GetWorktreeFromCacheOrFetch(ctx, root)
	})
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return projects, nil
}

// findProject resolves query to a project below the configured root.
func findProject(ctx context.Context, cfg *config.Config, svc *project.Service, query string) (project.Project, error) {
	root, err := projectRoot(cfg)
	if err != nil {
		return project.Project{}, err
	}
	projects, err := loadProjects(ctx, svc, root, false)
	if err != nil {
		return project.Project{}, err
	}
	p, ok := project.Find(projects, query)
	if !ok {
		return project.Project{}, fmt.Errorf("project %q: %w", query, project.ErrNotFound)
	}
	return p, nil
}

// findWorktree resolves query to a worktree by path, branch or project:branch.
func findWorktree(worktrees []project.ProjectWorktree, query string) (project.ProjectWorktree, error) {
	for _, wt := range worktrees {
		if wt.Path == query {
			return wt, nil
		}
	}

	projectName, branch, scoped := strings.Cut(query, ":")
	if !scoped {
		branch, projectName = query, ""
	}

	var matches []project.ProjectWorktree
	for _, wt := range worktrees {
		if wt.Branch == branch && (projectName == "" || wt.ProjectName == projectName) {
			matches = append(matches, wt)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return project.ProjectWorktree{}, fmt.Errorf("worktree %q: %w", query, project.ErrNotFound)
	default:
		return project.ProjectWorktree{}, fmt.Errorf("worktree %q is ambiguous, use <project>:<branch> or a path", query)
	}
}

// rankProjects orders projects by how recently and often their worktrees
// were opened. Missing or unreadable history leaves the order unchanged.
func rankProjects(ctx context.Context, cfg *config.Config, projects []project.Project) {
	h, err := history.Load(history.Path(cfg.DataDir))
	if err != nil {
		log.FromContext(ctx).Debug("history unavailable", "err", err)
		return
	}
	project.SortByScore(projects, h.ProjectScores(project.Directories(projects), time.Now()))
}

// recordAccess bumps the history entry for a worktree.
func recordAccess(ctx context.Context, cfg *config.Config, wt project.ProjectWorktree) {
	if err := history.RecordAccess(wt.Path, wt.ProjectName, wt.Branch, history.Path(cfg.DataDir)); err != nil {
		log.FromContext(ctx).Warn("failed to record history", "path", wt.Path, "err", err)
	}
}

// worktreeDirName maps a branch to the directory created inside the project.
func worktreeDirName(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// resolveDirty fills in the dirty state of worktrees using batched status checks.
func resolveDirty(ctx context.Context, svc *project.Service, worktrees []project.ProjectWorktree) []project.ProjectWorktree {
	plain := make([]project.Worktree, len(worktrees))
	for i, wt := range worktrees {
		plain[i] = wt.Worktree
	}

	resolved, _ := progress.Run(ctx, "Checking status", func(ctx context.Context) ([]project.Worktree, error) {
		return svc.Scanner().ResolveDirty(ctx, plain), nil
	})

	out := make([]project.ProjectWorktree, len(worktrees))
	for i, wt := range worktrees {
		wt.Worktree = resolved[i]
		out[i] = wt
	}
	return out
}

// absArg turns arguments that look like paths into absolute paths so they
// compare against cached paths. Other arguments are returned unchanged.
func absArg(arg string) string {
	if !strings.HasPrefix(arg, ".") && !strings.HasPrefix(arg, "~") && !filepath.IsAbs(arg) {
		return arg
	}
	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return arg
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return arg
	}
	return abs
}
