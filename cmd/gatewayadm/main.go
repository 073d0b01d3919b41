// Command gatewayadm is a thin HTTP client for hivegate's admin surface:
// listing loaded tenants, triggering a config reload, and reporting the
// host gatewayadm itself runs on.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var server, token string

	root := &cobra.Command{
		Use:   "gatewayadm",
		Short: "gatewayadm administers a running hivegate gateway",
	}
	root.PersistentFlags().StringVar(&server, "server", "http://localhost:8080", "Gateway base URL.")
	root.PersistentFlags().StringVar(&token, "token", "", "Admin Bearer token (falls back to HIVEGATE_ADMIN_TOKEN).")

	root.AddCommand(newTenantsCommand(&server, &token))
	root.AddCommand(newReloadCommand(&server, &token))
	root.AddCommand(newInfoCommand())
	return root
}

func resolveToken(flagToken string) string {
	if flagToken != "" {
		return flagToken
	}
	return os.Getenv("HIVEGATE_ADMIN_TOKEN")
}
