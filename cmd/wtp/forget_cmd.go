package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/log"
)

func newForgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "forget <project>",
		Short:             "Drop a project from the cache",
		GroupID:           GroupProject,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects,
		Long: `Drop a project from the cache without touching it on disk.

Useful after moving or deleting a project directory by hand. The project
shows up again on the next rescan if it still exists.`,
		Example: `  wtp forget api
  wtp forget ~/code/old-project`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			svc := newService(cfg)
			p, err := findProject(ctx, cfg, svc, absArg(args[0]))
			if err != nil {
				return err
			}

			if err := svc.RemoveProject(ctx, p.FullPath); err != nil {
				return err
			}

			log.FromContext(ctx).Printf("Forgot %s\n", p.DisplayPath)
			return nil
		},
	}

	return cmd
}
