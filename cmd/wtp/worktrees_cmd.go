package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/project"
	"github.com/raphi011/wtp/internal/ui/static"
)

func newWorktreesCmd() *cobra.Command {
	var (
		dirty           bool
		copyToClipboard bool
		jsonOutput      bool
		yamlOutput      bool
	)

	cmd := &cobra.Command{
		Use:     "worktrees [query]",
		Short:   "List worktrees of all projects",
		Aliases: []string{"wt", "w"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `List the worktrees of every project below the project directory.

Dirty state is not cached. Pass --dirty to run "git status" for each listed
worktree; checks run in batches of status_batch_size.`,
		Example: `  wtp worktrees              # List all worktrees
  wtp worktrees feat         # Fuzzy filter by project, branch or path
  wtp worktrees --dirty      # Include uncommitted-changes state
  wtp worktrees api --copy   # Copy the best match's path to the clipboard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)
			l := log.FromContext(ctx)

			format, err := output.FormatFromFlags(jsonOutput, yamlOutput)
			if err != nil {
				return err
			}

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
			if worktrees == nil {
				worktrees = []project.ProjectWorktree{}
			}

			if len(args) == 1 {
				worktrees = project.FilterWorktrees(worktrees, args[0])
			}

			if dirty {
				worktrees = resolveDirty(ctx, svc, worktrees)
			}

			if copyToClipboard {
				if len(worktrees) == 0 {
					return fmt.Errorf("no worktree matches: %w", project.ErrNotFound)
				}
				if err := clipboard.WriteAll(worktrees[0].Path); err != nil {
					l.Warn("failed to copy to clipboard", "err", err)
				} else {
					l.Printf("Copied %s\n", worktrees[0].Path)
				}
			}

			if ok, err := out.Structured(format, worktrees); ok {
				return err
			}

			if len(worktrees) == 0 {
				l.Println("No worktrees found below " + root)
				return nil
			}

			rows := make([][]string, 0, len(worktrees))
			for _, wt := range worktrees {
				rows = append(rows, static.WorktreeTableRow(wt))
			}
			out.Styled(static.RenderTable(static.WorktreeHeaders, rows))

			return nil
		},
	}

	cmd.Flags().BoolVar(&dirty, "dirty", false, "Check each worktree for uncommitted changes")
	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Copy the first match's path to the clipboard")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}
