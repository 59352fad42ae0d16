package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage wtp configuration.

Config file: ~/.config/wtp/config.toml
Environment: WTP_PROJECT_DIR, WTP_DATA_DIR`,
		Example: `  wtp config init     # Create default config
  wtp config show     # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  wtp config init      # Create config
  wtp config init -f   # Overwrite existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			if err := config.Init(path, force); err != nil {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			log.FromContext(cmd.Context()).Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			format, err := output.FormatFromFlags(jsonOutput, yamlOutput)
			if err != nil {
				return err
			}
			if ok, err := out.Structured(format, cfg); ok {
				return err
			}

			encoded, err := cfg.Encode()
			if err != nil {
				return err
			}
			out.Print(encoded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}
