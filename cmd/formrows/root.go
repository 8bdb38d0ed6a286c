package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
	human      bool
	layouts    []string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "formrows",
		Short:         "Edit repeating form rows in the browser or the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level")
	cmd.PersistentFlags().BoolVar(&flags.human, "human", false, "Write human readable logs")
	cmd.PersistentFlags().StringSliceVar(&flags.layouts, "layouts", nil, "Layout files or glob patterns (YAML or TOML) loaded next to the built-in forms")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newRenderCmd(flags))
	cmd.AddCommand(newEditCmd(flags))
	cmd.AddCommand(newThemeCmd(flags))
	cmd.AddCommand(newFormsCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
