package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/cache"
	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Short:   "Inspect or clear the discovery cache",
		GroupID: GroupConfig,
		Long: `Inspect or clear the discovery cache.

The cache lives in <data_dir>/cache.json. It is never refreshed on its own:
it is replaced when project_dir changes and updated by add, remove, clone and
forget. Clearing it also recovers from a corrupt cache file.`,
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheShowCmd())

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			if err := newService(cfg).ClearCache(); err != nil {
				return err
			}
			log.FromContext(ctx).Println("Cache cleared")
			return nil
		},
	}
}

// cacheSummary is the structured form of "wtp cache show".
type cacheSummary struct {
	Path           string   `json:"path" yaml:"path"`
	Keys           []string `json:"keys" yaml:"keys"`
	LastProjectDir string   `json:"lastProjectDir,omitempty" yaml:"last_project_dir,omitempty"`
	Projects       int      `json:"projects" yaml:"projects"`
	Worktrees      int      `json:"worktrees" yaml:"worktrees"`
}

func newCacheShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show what the cache holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			format, err := output.FormatFromFlags(jsonOutput, yamlOutput)
			if err != nil {
				return err
			}

			store := cache.Open(cfg.DataDir)
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			summary := cacheSummary{Path: store.Path(), Keys: keys}
			if keys == nil {
				summary.Keys = []string{}
			}

			dir, _, err := cache.GetValue[string](store, cache.KeyLastProjectDir)
			if err != nil {
				return err
			}
			dirs, _, err := cache.GetValue[[]string](store, cache.KeyDirectories)
			if err != nil {
				return err
			}
			wts, _, err := cache.GetValue[[]json.RawMessage](store, cache.KeyWorktrees)
			if err != nil {
				return err
			}
			summary.LastProjectDir = dir
			summary.Projects = len(dirs)
			summary.Worktrees = len(wts)

			if ok, err := out.Structured(format, summary); ok {
				return err
			}

			out.Printf("Path:       %s\n", summary.Path)
			if summary.LastProjectDir != "" {
				out.Printf("Root:       %s\n", summary.LastProjectDir)
			}
			out.Printf("Projects:   %d\n", summary.Projects)
			out.Printf("Worktrees:  %d\n", summary.Worktrees)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}
