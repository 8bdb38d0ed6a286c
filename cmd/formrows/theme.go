package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formrows/pkg/theme"
)

func newThemeCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or toggle the saved light/dark preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, root, false)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, root, false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Flip and persist the mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, root, true)
		},
	})
	return cmd
}

func runTheme(cmd *cobra.Command, root *rootFlags, toggle bool) error {
	app, err := loadApp(cmd, root)
	if err != nil {
		return err
	}
	path, err := preferencesPath(app.cfg)
	if err != nil {
		return err
	}

	state := theme.NewState(theme.NewFileStore(path))
	mode, err := state.Init(cmd.Context(), app.cfg.Theme.SystemDark)
	if err != nil {
		return err
	}
	if toggle {
		if mode, err = state.Toggle(cmd.Context()); err != nil {
			return err
		}
		app.log.Zerolog().Debug().Str("path", path).Str("mode", string(mode)).Msg("theme saved")
	}

	fmt.Fprintln(cmd.OutOrStdout(), modeStyle(mode).Render(string(mode)))
	return nil
}

func modeStyle(mode theme.Mode) lipgloss.Style {
	if mode.IsDark() {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b45309"))
}
