package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtp/internal/config"
	"github.com/raphi011/wtp/internal/log"
	"github.com/raphi011/wtp/internal/output"
	"github.com/raphi011/wtp/internal/templates"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Short:   "Create files from templates",
		Aliases: []string{"tpl"},
		GroupID: GroupUtility,
		Long: `Create files from templates.

Templates are files in templates_dir (default <data_dir>/templates). Their
content may use {{.Name}} and {{.Date}}. New files never overwrite existing
ones: "note.txt" becomes "note 2.txt", "note 3.txt" and so on.`,
	}

	cmd.AddCommand(newTemplateListCmd())
	cmd.AddCommand(newTemplateNewCmd())

	return cmd
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List available templates",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			tpls, err := templates.List(cfg.TemplatesDir)
			if err != nil {
				return err
			}
			if len(tpls) == 0 {
				log.FromContext(ctx).Println("No templates in " + cfg.TemplatesDir)
				return nil
			}
			for _, t := range tpls {
				out.Println(t.Name)
			}
			return nil
		},
	}
}

func newTemplateNewCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "new <template> [name]",
		Short: "Create a file from a template",
		Args:  cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			tpls, _ := templates.List(config.FromContext(cmd.Context()).TemplatesDir)
			names := make([]string, 0, len(tpls))
			for _, t := range tpls {
				names = append(names, t.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		Example: `  wtp template new note              # ./note.txt, or ./note 2.txt if taken
  wtp template new note standup      # ./standup.txt
  wtp template new note -o ~/notes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			tpls, err := templates.List(cfg.TemplatesDir)
			if err != nil {
				return err
			}
			tpl, ok := templates.Find(tpls, args[0])
			if !ok {
				return fmt.Errorf("template %q not found in %s", args[0], cfg.TemplatesDir)
			}

			name := tpl.Name
			if len(args) == 2 {
				name = args[1]
			}

			dir := outDir
			if dir == "" {
				if dir, err = os.Getwd(); err != nil {
					return err
				}
			} else if dir, err = config.ExpandPath(dir); err != nil {
				return err
			}

			path, err := templates.Create(dir, name, tpl)
			if err != nil {
				return err
			}
			out.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to create the file in (default current directory)")
	cmd.MarkFlagDirname("out")

	return cmd
}
