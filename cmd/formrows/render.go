package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	formrows "github.com/goliatone/go-formrows"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/theme"
)

type renderOptions struct {
	output string
	mode   string
	action string
	engine string
}

func newRenderCmd(root *rootFlags) *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <form>",
		Short: "Render a form's edit page as static HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, root)
			if err != nil {
				return err
			}

			mode := theme.ModeLight
			if opts.mode != "" {
				parsed, ok := theme.ParseMode(opts.mode)
				if !ok {
					return fmt.Errorf("unknown mode %q (want light or dark)", opts.mode)
				}
				mode = parsed
			}

			html, err := vanilla.New(vanilla.WithEngine(opts.engine))
			if err != nil {
				return err
			}
			registry := render.NewRegistry()
			registry.MustRegister(html)

			gen, err := formrows.New(
				formrows.WithCatalog(app.catalog),
				formrows.WithRegistry(registry),
				formrows.WithThemeSelector(theme.DefaultSelector(), app.cfg.Theme.Name),
			)
			if err != nil {
				return err
			}
			markup, err := gen.Generate(cmd.Context(), formrows.Request{
				FormID: args[0],
				Options: formrows.RenderOptions{
					Action: opts.action,
					Mode:   mode,
				},
			})
			if err != nil {
				return err
			}

			if opts.output == "" {
				_, err = cmd.OutOrStdout().Write(markup)
				return err
			}
			if err := os.WriteFile(opts.output, markup, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			app.log.Zerolog().Info().Str("form", args[0]).Str("path", opts.output).Msg("page written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Theme mode to render: light or dark")
	cmd.Flags().StringVar(&opts.action, "action", "", "Form action URL")
	cmd.Flags().StringVar(&opts.engine, "engine", vanilla.EngineBuiltin, "Template engine: builtin or go-template")
	return cmd
}
