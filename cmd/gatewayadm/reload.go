package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newReloadCommand(server, token *string) *cobra.Command {
	return &cobra.Command{
		Use:     "reload",
		Short:   "Trigger a tenant configuration reload",
		Example: `  gatewayadm reload --server=http://localhost:8080 --token=$HIVEGATE_ADMIN_TOKEN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAdminClient(*server, resolveToken(*token))
			if err := client.reload(context.Background()); err != nil {
				return err
			}
			fmt.Println(color.GreenString("tenant configuration reloaded"))
			return nil
		},
	}
}
