package main

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/editor"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/project"
	"github.com/raphi011/wtp/internal/ui/prompt"
	"github.com/raphi011/wtp/internal/ui/styles"
)

func newOpenCmd() *cobra.Command {
	var (
		copyToClipboard bool
		printOnly       bool
	)

	cmd := &cobra.Command{
		Use:               "open [worktree]",
		Short:             "Open a worktree in the editor",
		Aliases:           []string{"o"},
		GroupID:           GroupCore,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeWorktrees,
		Long: `Open a worktree in the configured editor.

The worktree is given as a path, a branch name or <project>:<branch>; in a
terminal it can be picked from a list. Opening a worktree records it in the
history used to rank "wtp projects".`,
		Example: `  wtp open feature-x           # Open in the editor
  wtp open api:main --copy     # Also copy the path
  cd "$(wtp open api:main -n)" # Print the path only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)
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

			choices, values := worktreeChoices(worktrees)
			query, err := argOrPick(args, 0, "Worktree:", choices, values)
			if err != nil || query == "" {
				return err
			}

			wt, err := findWorktree(worktrees, absArg(query))
			if err != nil {
				return err
			}
			recordAccess(ctx, cfg, wt)

			if copyToClipboard {
				if err := clipboard.WriteAll(wt.Path); err != nil {
					l.Warn("failed to copy to clipboard", "err", err)
				}
			}

			if printOnly {
				out.Println(wt.Path)
				return nil
			}

			return editor.Open(ctx, cfg.Editor, editor.Target{Path: wt.Path, Project: wt.ProjectName, Branch: wt.Branch})
		},
	}

	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Copy the worktree path to the clipboard")
	cmd.Flags().BoolVarP(&printOnly, "print", "n", false, "Print the path instead of opening the editor")

	return cmd
}

// worktreeChoices builds the worktree picker rows: project and branch with the
// path as detail. values holds the worktree paths.
func worktreeChoices(worktrees []project.ProjectWorktree) (choices []prompt.Choice, values []string) {
	for _, wt := range worktrees {
		branch := wt.Branch
		if branch == "" {
			branch = styles.CurrentSymbols().Detached
		}
		choices = append(choices, prompt.Choice{Label: wt.ProjectName + ":" + branch, Detail: wt.Path})
		values = append(values, wt.Path)
	}
	return choices, values
}
