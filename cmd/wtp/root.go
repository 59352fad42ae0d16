package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/git"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/ui/styles"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	rootDir string

	// closeLog flushes the log file attached in PersistentPreRunE
	closeLog = func() error { return nil }
)

// Command group IDs for organizing help output
const (
	GroupCore    = "core"
	GroupProject = "project"
	GroupUtility = "utility"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wtp",
	Short: "Find bare-repository projects and manage their worktrees",
	Long: `wtp discovers git projects laid out as bare repositories (a ".bare"
directory next to a ".git" file) below a root directory and lists, adds and
removes their worktrees.

Scan results are cached in the data directory until the root changes or the
cache is cleared, so repeated commands stay fast.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for completion and help commands
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}

		ctx := cmd.Context()
		cfg := config.FromContext(ctx)

		if rootDir != "" {
			dir, err := config.ExpandPath(rootDir)
			if err != nil {
				return err
			}
			if cfg.ProjectDir, err = filepath.Abs(dir); err != nil {
				return fmt.Errorf("resolve --dir: %w", err)
			}
		}
		styles.SetNerdfont(cfg.Nerdfont)

		logger := log.New(os.Stderr, verbose, quiet)
		closer, err := logger.AttachFile(log.FileConfig{
			Path:       cfg.Log.File,
			Level:      cfg.Log.Level,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		closeLog = closer
		logger.Info("command", "name", cmd.CommandPath(), "args", args)

		cmd.SetContext(log.WithLogger(ctx, logger))

		// Check git is available
		return git.CheckGit()
	},
	// Run is not set - shows help when no subcommand provided
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Load config
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = config.WithConfig(ctx, &loadedCfg)

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, os.Stdout)

	// Store context for commands to use
	rootCmd.SetContext(ctx)

	err = rootCmd.Execute()
	_ = closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'wtp -h' for help")
		cancel()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "Search root for this invocation (overrides project_dir)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.MarkPersistentFlagDirname("dir")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupProject, Title: "Project Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Core commands
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newWorktreesCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newOpenCmd())

	// Project commands
	rootCmd.AddCommand(newCloneCmd())
	rootCmd.AddCommand(newForgetCmd())
	rootCmd.AddCommand(newBranchesCmd())

	// Utility commands
	rootCmd.AddCommand(newTemplateCmd())

	// Config commands
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd())
}
