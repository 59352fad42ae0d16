package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/cache"
	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/git"
	"github.com/raphi011/wtp/internal/project"
)

// Completions read the cache only; a shell completion never triggers a scan.

func cachedProjects(cmd *cobra.Command) []project.Project {
	cfg := config.FromContext(cmd.Context())
	projects, _, err := cache.GetValue[[]project.Project](cache.Open(cfg.DataDir), cache.KeyProjects)
	if err != nil {
		return nil
	}
	return projects
}

// completeProjects completes project names.
func completeProjects(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, p := range cachedProjects(cmd) {
		if strings.HasPrefix(p.Name, toComplete) {
			names = append(names, p.Name+"\t"+p.DisplayPath)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeWorktrees completes <project>:<branch> worktree references.
func completeWorktrees(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var refs []string
	for _, wt := range project.Flatten(cachedProjects(cmd)) {
		if wt.Branch == "" {
			continue
		}
		ref := wt.ProjectName + ":" + wt.Branch
		if strings.HasPrefix(ref, toComplete) || strings.HasPrefix(wt.Branch, toComplete) {
			refs = append(refs, ref+"\t"+wt.Path)
		}
	}
	return refs, cobra.ShellCompDirectiveNoFileComp
}

// completeAddArgs completes the project, then the remote branches of that project.
func completeAddArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return completeProjects(cmd, args, toComplete)
	case 1:
		return remoteBranches(cmd, args[0], toComplete, true), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeBaseBranches completes --base with remote-tracking branches.
func completeBaseBranches(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return remoteBranches(cmd, args[0], toComplete, false), cobra.ShellCompDirectiveNoFileComp
}

func remoteBranches(cmd *cobra.Command, query, toComplete string, stripRemote bool) []string {
	p, ok := project.Find(cachedProjects(cmd), query)
	if !ok {
		return nil
	}
	branches, err := git.ListRemoteBranches(cmd.Context(), p.FullPath)
	if err != nil {
		return nil
	}
	var out []string
	for _, b := range branches {
		if stripRemote {
			b = strings.TrimPrefix(b, "origin/")
		}
		if strings.HasPrefix(b, toComplete) {
			out = append(out, b)
		}
	}
	return out
}
