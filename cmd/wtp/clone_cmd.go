package main

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/git"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/remote"
	"github.com/raphi011/wtp/internal/ui/progress"
)

func newCloneCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:     "clone <url> [name]",
		Short:   "Clone a repository as a bare-repository project",
		GroupID: GroupProject,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Clone a repository into the project directory.

The repository is cloned bare into <project_dir>/[group/]<name>/.bare, a
".git" file pointing at it is written next to it, and origin is configured to
fetch every branch. The new project is added to the cache.`,
		Example: `  wtp clone git@github.com:org/api.git           # -> <project_dir>/api
  wtp clone https://github.com/org/api.git backend
  wtp clone git@github.com:org/api.git -g work    # -> <project_dir>/work/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)
			l := log.FromContext(ctx)

			root, err := projectRoot(cfg)
			if err != nil {
				return err
			}

			url := args[0]
			name := repoName(url)
			if len(args) == 2 {
				name = args[1]
			}
			if name == "" || name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
				return fmt.Errorf("invalid project name %q", name)
			}

			target := filepath.Join(root, group, name)
			l.Debug("cloning", "url", url, "path", target)

			if _, err := progress.Run(ctx, "Cloning "+url, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, git.CloneBare(ctx, url, target)
			}); err != nil {
				return err
			}

			p, err := newService(cfg).AddProject(ctx, target)
			if err != nil {
				return fmt.Errorf("cloned to %s but could not read it: %w", target, err)
			}

			l.Printf("Cloned %s into %s\n", url, p.DisplayPath)
			out.Println(p.FullPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Subdirectory of project_dir to clone into")

	return cmd
}

// repoName derives the project name from a clone URL.
func repoName(url string) string {
	if r, ok := remote.Parse(url, nil); ok {
		return path.Base(r.Name)
	}
	return strings.TrimSuffix(filepath.Base(strings.TrimRight(url, "/")), ".git")
}
