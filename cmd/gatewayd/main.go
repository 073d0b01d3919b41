// Command gatewayd runs the hivegate API gateway: a tenant-aware,
// OpenAI-compatible chat endpoint backed by a PostgreSQL agent, a
// knowledge-base agent, and a generative fallback agent.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/hivegate/internal/gateway"
	"github.com/kiosk404/hivegate/internal/gateway/config"
	"github.com/kiosk404/hivegate/internal/gateway/options"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

// Process exit codes on bootstrap failure, matching sysexits.h conventions.
const (
	exitOK             = 0
	exitBadConfig      = 64
	exitDBUnreachable  = 65
	exitLLMUnreachable = 69
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(exitBadConfig)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gatewayd",
		Short: "gatewayd runs the hivegate multi-tenant LLM API gateway",
	}
	root.PersistentFlags().String("config", "", "Path to a gatewayd configuration file (YAML/JSON/TOML, read via viper).")
	_ = viper.BindPFlag("config-file", root.PersistentFlags().Lookup("config"))

	root.AddCommand(newServeCommand())
	root.AddCommand(newValidateConfigCommand())
	return root
}

func newServeCommand() *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindOptions(cmd, opts); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitBadConfig)
			}
			if errs := opts.Validate(); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(os.Stderr, e)
				}
				os.Exit(exitBadConfig)
			}

			logger.Init(opts.LogLevel, false)

			cfg, err := config.CreateConfigFromOptions(opts)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitBadConfig)
			}

			if err := gateway.Run(cfg); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(classifyBootstrapFailure(err))
			}
			os.Exit(exitOK)
			return nil
		},
	}
	cmd.Flags().AddFlagSet(opts.Flags())
	return cmd
}

func newValidateConfigCommand() *cobra.Command {
	opts := options.NewOptions()
	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Validate the gateway configuration and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindOptions(cmd, opts); err != nil {
				return err
			}
			if errs := opts.Validate(); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(os.Stderr, e)
				}
				os.Exit(exitBadConfig)
			}
			fmt.Println("configuration OK")
			return nil
		},
	}
	cmd.Flags().AddFlagSet(opts.Flags())
	return cmd
}

// bindOptions layers viper-sourced config file and environment values
// under explicit flags, which always take precedence (flag > env > file >
// default, per the standard viper resolution order).
func bindOptions(cmd *cobra.Command, opts *options.Options) error {
	v := viper.New()
	v.SetEnvPrefix("HIVEGATE")
	v.AutomaticEnv()

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile = viper.GetString("config-file")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	_ = v.BindPFlags(cmd.Flags())
	return v.Unmarshal(opts)
}

// classifyBootstrapFailure maps a bootstrap error to the exit code its
// subsystem owns (§6.2): DB reachability failures exit 65, LLM provider
// reachability failures exit 69, everything else is treated as a
// configuration problem (64).
func classifyBootstrapFailure(err error) int {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "pool", "pgx", "postgres", "database"):
		return exitDBUnreachable
	case containsAny(msg, "provider", "llm", "model"):
		return exitLLMUnreachable
	default:
		return exitBadConfig
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
