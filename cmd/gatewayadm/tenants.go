package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func newTenantsCommand(server, token *string) *cobra.Command {
	return &cobra.Command{
		Use:     "tenants",
		Short:   "List every tenant loaded by the gateway",
		Example: `  gatewayadm tenants --server=http://localhost:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAdminClient(*server, resolveToken(*token))
			tenants, err := client.listTenants(context.Background())
			if err != nil {
				return err
			}

			table := uitable.New()
			table.MaxColWidth = 40
			table.AddRow("ID", "NAME", "LANGUAGE", "POSTGRES", "KB", "FALLBACK")
			for _, t := range tenants {
				table.AddRow(t.ID, t.Name, t.Language, boolBadge(t.PostgresEnabled), boolBadge(t.KnowledgeBaseEnabled), boolBadge(t.FallbackEnabled))
			}
			fmt.Println(table)
			return nil
		},
	}
}

func boolBadge(enabled bool) string {
	if enabled {
		return color.GreenString("yes")
	}
	return color.New(color.Faint).Sprint("no")
}
