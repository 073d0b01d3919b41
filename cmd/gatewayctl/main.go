// Command gatewayctl is an interactive chat client for the hivegate API
// gateway's OpenAI-compatible /v1/chat/completions endpoint.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var server, tenantID, model, session string

	cmd := &cobra.Command{
		Use:   "gatewayctl [message]",
		Short: "Chat with a hivegate tenant",
		Long: `gatewayctl talks to a hivegate gateway's /v1/chat/completions endpoint.

When invoked without arguments it opens an interactive chat. When invoked
with a message argument it sends that single message and prints the reply.`,
		Example: `  # Interactive chat
  gatewayctl

  # One-shot message
  gatewayctl "how many orders shipped last week?"

  # Against a specific tenant and server
  gatewayctl --tenant=acme --server=http://localhost:8080 "hello"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
				server = "http://" + server
			}
			if session == "" {
				session = fmt.Sprintf("gatewayctl-%d", time.Now().UnixNano())
			}
			client := NewGatewayClient(server, tenantID, model, session, nil)

			if len(args) > 0 {
				return RunOnce(client, strings.Join(args, " "), func(delta string) {
					fmt.Print(delta)
				})
			}
			return RunTUI(client)
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "Gateway base URL.")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID (sent as X-Tenant-ID).")
	cmd.Flags().StringVar(&model, "model", "", "Model field to send (optional; the gateway classifies by tenant when empty).")
	cmd.Flags().StringVar(&session, "session", "", "Session key (sent as X-Session-Key; defaults to a generated value).")

	return cmd
}
