package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/project"
	"github.com/raphi011/wtp/internal/ui/static"
)

func newProjectsCmd() *cobra.Command {
	var (
		refresh    bool
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:     "projects [query]",
		Short:   "List bare-repository projects",
		Aliases: []string{"p", "ls"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `List the projects below the project directory.

A project is a directory holding a bare repository in ".bare". Results come
from the cache when it was filled for the same root; --refresh rescans.
Without a query, projects whose worktrees were opened recently come first.
With a query, projects are ranked by fuzzy match on name and path.`,
		Example: `  wtp projects              # List all projects
  wtp projects api          # Fuzzy filter by name or path
  wtp projects --refresh    # Rescan instead of using the cache
  wtp projects --json       # Output as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			format, err := output.FormatFromFlags(jsonOutput, yamlOutput)
			if err != nil {
				return err
			}

			root, err := projectRoot(cfg)
			if err != nil {
				return err
			}

			projects, err := loadProjects(ctx, newService(cfg), root, refresh)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				projects = project.Filter(projects, args[0])
			} else {
				rankProjects(ctx, cfg, projects)
			}

			if ok, err := out.Structured(format, projects); ok {
				return err
			}

			if len(projects) == 0 {
				log.FromContext(ctx).Println("No projects found below " + root)
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, static.ProjectTableRow(p))
			}
			out.Styled(static.RenderTable(static.ProjectHeaders, rows))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Rescan instead of serving the cache")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}
