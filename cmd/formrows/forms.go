package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFormsCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List the forms that can be rendered or edited",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			for _, id := range app.catalog.List() {
				form, err := app.catalog.Get(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d containers\n", id, form.Title, len(form.Containers))
			}
			return nil
		},
	}
}
