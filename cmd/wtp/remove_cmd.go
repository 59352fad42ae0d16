package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/history"
	"github.com/raphi011/wtp/internal/log"
)

func newRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:               "remove <worktree>",
		Short:             "Remove a worktree",
		Aliases:           []string{"rm"},
		GroupID:           GroupCore,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeWorktrees,
		Long: `Remove a worktree from disk and from the cache.

The worktree is given as a path, a branch name or <project>:<branch>.
Worktrees with uncommitted changes are only removed with --force.`,
		Example: `  wtp remove feature-x              # By branch
  wtp remove api:feature-x          # Branch in a specific project
  wtp remove ~/code/api/feature-x   # By path
  wtp remove feature-x -f           # Discard local changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			l := log.FromContext(ctx)

			root, err := projectRoot(cfg)
			if err != nil {
				return err
			}

			svc := newService(cfg)
			if _, err := loadProjects(ctx, svc, root, false); err != nil {
				return err
			}
			worktrees, err := svc.Worktrees(ctx, root)
			if err != nil {
				return err
			}

			wt, err := findWorktree(worktrees, absArg(args[0]))
			if err != nil {
				return err
			}

			l.Debug("removing worktree", "path", wt.Path, "project", wt.ProjectPath)
			if err := svc.RemoveWorktree(ctx, wt.ProjectPath, wt.Path, force); err != nil {
				return err
			}

			file := history.Path(cfg.DataDir)
			if h, err := history.Load(file); err == nil && h.RemoveByPath(wt.Path) {
				if err := h.Save(file); err != nil {
					l.Warn("failed to update history", "err", err)
				}
			}

			l.Printf("Removed worktree %s\n", wt.Path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even with uncommitted changes")

	return cmd
}
