package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	formrows "github.com/goliatone/go-formrows"
	"github.com/goliatone/go-formrows/pkg/renderers/tui"
)

// editDriver replaces the interactive prompts when set.
var editDriver tui.PromptDriver

func newEditCmd(root *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "edit <form>",
		Short: "Edit a form's rows in the terminal and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, root)
			if err != nil {
				return err
			}

			outputFormat := tui.OutputFormat(format)
			switch outputFormat {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown format %q (want json, form or pretty)", format)
			}

			tuiOptions := []tui.Option{tui.WithOutputFormat(outputFormat)}
			if editDriver != nil {
				tuiOptions = append(tuiOptions, tui.WithPromptDriver(editDriver))
			} else if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("edit needs an interactive terminal")
			}
			registry, err := formrows.NewRegistry(tuiOptions...)
			if err != nil {
				return err
			}
			gen, err := formrows.New(formrows.WithCatalog(app.catalog), formrows.WithRegistry(registry))
			if err != nil {
				return err
			}

			out, err := gen.Generate(cmd.Context(), formrows.Request{FormID: args[0], Renderer: tui.Name})
			if errors.Is(err, tui.ErrAborted) {
				app.log.Warn("edit aborted")
				return nil
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "Output format: json, form or pretty")
	return cmd
}
