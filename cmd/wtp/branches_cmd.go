package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/git"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/ui/progress"
)

func newBranchesCmd() *cobra.Command {
	var (
		fetch      bool
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:               "branches <project>",
		Short:             "List remote branches of a project",
		Aliases:           []string{"br"},
		GroupID:           GroupProject,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects,
		Example: `  wtp branches api           # Branches known locally
  wtp branches api --fetch   # Fetch origin first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			format, err := output.FormatFromFlags(jsonOutput, yamlOutput)
			if err != nil {
				return err
			}

			p, err := findProject(ctx, cfg, newService(cfg), absArg(args[0]))
			if err != nil {
				return err
			}

			if fetch {
				if _, err := progress.Run(ctx, "Fetching origin", func(ctx context.Context) (struct{}, error) {
					return struct{}{}, git.Fetch(ctx, p.FullPath)
				}); err != nil {
					return err
				}
			}

			branches, err := git.ListRemoteBranches(ctx, p.FullPath)
			if err != nil {
				return err
			}
			if branches == nil {
				branches = []string{}
			}

			if ok, err := out.Structured(format, branches); ok {
				return err
			}
			for _, b := range branches {
				out.Println(b)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&fetch, "fetch", "f", false, "Fetch origin before listing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}
