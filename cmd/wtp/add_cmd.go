package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/editor"
	"github.com/raphi011/wtp/internal/git"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/project"
	"github.com/raphi011/wtp/internal/ui/prompt"
	"github.com/raphi011/wtp/internal/ui/styles"
)

func newAddCmd() *cobra.Command {
	var (
		newBranch bool
		base      string
		track     bool
		push      bool
		yes       bool
		open      bool
		path      string
	)

	cmd := &cobra.Command{
		Use:               "add [project] [branch]",
		Short:             "Add a worktree to a project",
		Aliases:           []string{"a", "new"},
		GroupID:           GroupCore,
		Args:              cobra.MaximumNArgs(2),
		ValidArgsFunction: completeAddArgs,
		Long: `Add a worktree to a project.

The worktree is created inside the project directory, named after the branch
with "/" replaced by "-". A --path must stay below the project directory;
relative paths are taken from it. The new worktree is appended to the cached
project so the next listing shows it without a rescan.

When run in a terminal without arguments, the project is picked from a list
and the branch name is asked for.`,
		Example: `  wtp add api main                         # Check out an existing branch
  wtp add api feature/login -b             # Create a branch from HEAD
  wtp add api fix -b --base origin/main --track
  wtp add api feature/x -b --push          # Create, then push and set upstream
  wtp add                                  # Pick project and branch interactively`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)
			l := log.FromContext(ctx)

			if track && base == "" {
				return errors.New("--track requires --base")
			}

			root, err := projectRoot(cfg)
			if err != nil {
				return err
			}

			svc := newService(cfg)
			projects, err := loadProjects(ctx, svc, root, false)
			if err != nil {
				return err
			}

			choices, values := projectChoices(projects)
			query, err := argOrPick(args, 0, "Project:", choices, values)
			if err != nil || query == "" {
				return err
			}
			p, ok := project.Find(projects, query)
			if !ok {
				return fmt.Errorf("project %q: %w", query, project.ErrNotFound)
			}

			validate := func(name string) error {
				if !newBranch {
					return nil
				}
				return git.CheckBranchName(ctx, name)
			}
			branch, err := argOrBranch(args, 1, "Branch:", validate)
			if err != nil || branch == "" {
				return err
			}

			if path == "" {
				path = filepath.Join(p.FullPath, worktreeDirName(branch))
			}

			wt, err := svc.AddWorktree(ctx, project.AddRequest{
				Project: p,
				Path:    path,
				AddOptions: git.AddOptions{
					Branch:    branch,
					NewBranch: newBranch,
					Base:      base,
					Track:     track,
				},
			})
			if err != nil {
				return err
			}
			l.Printf("Created worktree for %s at %s\n", branch, wt.Path)

			target := project.ProjectWorktree{Worktree: wt, ProjectPath: p.FullPath, ProjectName: p.Name}
			recordAccess(ctx, cfg, target)

			if push {
				if err := pushBranch(cmd, cfg, wt.Path, branch, yes); err != nil {
					return err
				}
			}

			if open || cfg.Open.AfterAdd {
				if err := editor.Open(ctx, cfg.Editor, editor.Target{Path: wt.Path, Project: p.Name, Branch: branch}); err != nil {
					l.Warn("failed to open editor", "err", err)
				}
			}

			out.Println(wt.Path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&newBranch, "new", "b", false, "Create the branch")
	cmd.Flags().StringVar(&base, "base", "", "Start point for a new branch (default HEAD)")
	cmd.Flags().BoolVar(&track, "track", false, "Track --base as upstream")
	cmd.Flags().BoolVarP(&push, "push", "p", false, "Push the branch to origin and set upstream")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Push without asking for confirmation")
	cmd.Flags().BoolVarP(&open, "open", "o", false, "Open the worktree in the editor")
	cmd.Flags().StringVar(&path, "path", "", "Worktree directory inside the project (default <project>/<branch>)")
	cmd.MarkFlagDirname("path")

	cmd.RegisterFlagCompletionFunc("base", completeBaseBranches)

	return cmd
}

// pushBranch pushes branch after confirmation when push.confirm is set.
func pushBranch(cmd *cobra.Command, cfg *config.Config, path, branch string, yes bool) error {
	ctx := cmd.Context()
	l := log.FromContext(ctx)

	if cfg.Push.Confirm && !yes {
		if !prompt.Interactive() {
			l.Warn("skipping push: confirmation needs a terminal, pass --yes", "branch", branch)
			return nil
		}
		result, err := prompt.Confirm(fmt.Sprintf("Push %s to origin?", branch))
		if err != nil {
			return err
		}
		if result.Cancelled || !result.Confirmed {
			l.Println("Push skipped")
			return nil
		}
	}

	if err := git.Push(ctx, path, branch); err != nil {
		return err
	}
	l.Printf("Pushed %s to origin\n", branch)
	return nil
}

// projectChoices builds the project picker rows: the display path with the
// origin remote and worktree count as detail. values holds the full paths.
func projectChoices(projects []project.Project) (choices []prompt.Choice, values []string) {
	for _, p := range projects {
		var detail []string
		if len(p.Remotes) > 0 {
			detail = append(detail, styles.RemoteSymbol(p.Remotes[0].Icon)+" "+p.Remotes[0].Name)
		}
		switch n := len(p.Worktrees); n {
		case 0:
		case 1:
			detail = append(detail, "1 worktree")
		default:
			detail = append(detail, fmt.Sprintf("%d worktrees", n))
		}
		choices = append(choices, prompt.Choice{Label: p.DisplayPath, Detail: strings.Join(detail, "  ")})
		values = append(values, p.FullPath)
	}
	return choices, values
}

// argOrPick returns args[i], or the value of the choice picked in a terminal.
// An empty result without error means the user cancelled.
func argOrPick(args []string, i int, label string, choices []prompt.Choice, values []string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	if !prompt.Interactive() {
		return "", fmt.Errorf("missing argument: %s", label)
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("nothing to choose for %s", label)
	}
	result, err := prompt.Pick(label, choices)
	if err != nil || result.Cancelled {
		return "", err
	}
	return values[result.Index], nil
}

// argOrBranch returns args[i] after validation, or asks for a branch name in
// a terminal. An empty result without error means the user cancelled.
func argOrBranch(args []string, i int, label string, validate func(string) error) (string, error) {
	if len(args) > i {
		return args[i], validate(args[i])
	}
	if !prompt.Interactive() {
		return "", fmt.Errorf("missing argument: %s", label)
	}
	result, err := prompt.BranchInput(label, "feature/name", validate)
	if err != nil || result.Cancelled {
		return "", err
	}
	return result.Branch, nil
}
