// Package options defines the hivegate daemon's command-line/config-file
// surface, following the same Options struct + Flags()/Validate()/Complete()
// shape used throughout this codebase's other daemons.
package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kiosk404/hivegate/internal/gateway/handler/middleware"
	"github.com/kiosk404/hivegate/internal/pkg/server"
)

// Options is the unvalidated, flag/config-bound configuration for the
// gateway daemon.
type Options struct {
	ServingOptions       *ServingOptions        `json:"serving" mapstructure:"serving"`
	TenantOptions        *TenantOptions         `json:"tenant" mapstructure:"tenant"`
	AdminOptions         *middleware.AuthConfig `json:"admin-auth" mapstructure:"admin-auth"`
	KnowledgeBaseOptions *KnowledgeBaseOptions  `json:"knowledge-base" mapstructure:"knowledge-base"`
	TracingOptions       *TracingOptions        `json:"tracing" mapstructure:"tracing"`
	StoreOptions         *StoreOptions          `json:"store" mapstructure:"store"`
	LogLevel             string                 `json:"log-level" mapstructure:"log-level"`
}

// StoreOptions locates the durable overflow cache for schema snapshots and
// knowledge-base passages (§11.4).
type StoreOptions struct {
	BoltPath string `json:"bolt-path" mapstructure:"bolt-path"`
}

// TracingOptions controls OpenTelemetry span export (§ tracing). Disabled
// by default; every span stays a cheap no-op when Enabled is false.
type TracingOptions struct {
	Enabled      bool   `json:"enabled" mapstructure:"enabled"`
	OTLPEndpoint string `json:"otlp-endpoint" mapstructure:"otlp-endpoint"`
}

// KnowledgeBaseOptions locates the shared knowledge-base retrieval service
// that every tenant's Knowledge-Base Agent queries (§4.5).
type KnowledgeBaseOptions struct {
	BaseURL string `json:"base-url" mapstructure:"base-url"`
}

// ServingOptions binds the generic HTTP server shell.
type ServingOptions struct {
	BindAddress     string        `json:"bind-address" mapstructure:"bind-address"`
	BindPort        int           `json:"bind-port" mapstructure:"bind-port"`
	Mode            string        `json:"mode" mapstructure:"mode"`
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// TenantOptions locates the tenant configuration document and holds the
// retry count (§4.1).
type TenantOptions struct {
	ConfigFile string `json:"config-file" mapstructure:"config-file"`
	RetryCount int    `json:"retry-count" mapstructure:"retry-count"`
}

func NewOptions() *Options {
	return &Options{
		ServingOptions: &ServingOptions{
			BindAddress:     "0.0.0.0",
			BindPort:        8080,
			Mode:            "release",
			ShutdownTimeout: 15 * time.Second,
		},
		TenantOptions: &TenantOptions{
			ConfigFile: "configs/tenants.yaml",
			RetryCount: 3,
		},
		AdminOptions:         &middleware.AuthConfig{Enabled: false},
		KnowledgeBaseOptions: &KnowledgeBaseOptions{BaseURL: "http://127.0.0.1:8081"},
		TracingOptions:       &TracingOptions{Enabled: false, OTLPEndpoint: "localhost:4318"},
		StoreOptions:         &StoreOptions{BoltPath: "data/hivegate.db"},
		LogLevel:             "info",
	}
}

func (o *Options) Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("gatewayd", pflag.ExitOnError)
	fs.StringVar(&o.ServingOptions.BindAddress, "serving.bind-address", o.ServingOptions.BindAddress, "IP address to serve on.")
	fs.IntVar(&o.ServingOptions.BindPort, "serving.bind-port", o.ServingOptions.BindPort, "Port to serve on.")
	fs.StringVar(&o.ServingOptions.Mode, "serving.mode", o.ServingOptions.Mode, "Gin run mode: debug|release|test.")
	fs.DurationVar(&o.ServingOptions.ShutdownTimeout, "serving.shutdown-timeout", o.ServingOptions.ShutdownTimeout, "Graceful shutdown timeout.")
	fs.StringVar(&o.TenantOptions.ConfigFile, "tenant.config-file", o.TenantOptions.ConfigFile, "Path to the tenant configuration YAML document.")
	fs.IntVar(&o.TenantOptions.RetryCount, "tenant.retry-count", o.TenantOptions.RetryCount, "Fallback retry count used when a tenant's policy omits one.")
	fs.BoolVar(&o.AdminOptions.Enabled, "admin-auth.enabled", o.AdminOptions.Enabled, "Require a Bearer token on /admin routes.")
	fs.StringVar(&o.AdminOptions.Token, "admin-auth.token", o.AdminOptions.Token, "Admin Bearer token (falls back to HIVEGATE_ADMIN_TOKEN).")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug|info|warn|error.")
	fs.StringVar(&o.KnowledgeBaseOptions.BaseURL, "knowledge-base.base-url", o.KnowledgeBaseOptions.BaseURL, "Base URL of the shared knowledge-base retrieval service.")
	fs.BoolVar(&o.TracingOptions.Enabled, "tracing.enabled", o.TracingOptions.Enabled, "Export OpenTelemetry spans for dispatch and Postgres agent queries.")
	fs.StringVar(&o.TracingOptions.OTLPEndpoint, "tracing.otlp-endpoint", o.TracingOptions.OTLPEndpoint, "OTLP/HTTP collector endpoint (host:port, no scheme).")
	fs.StringVar(&o.StoreOptions.BoltPath, "store.bolt-path", o.StoreOptions.BoltPath, "Path to the BoltDB file backing the schema/knowledge-base durable cache.")
	return fs
}

func (o *Options) Validate() []error {
	var errs []error
	if o.ServingOptions.BindPort <= 0 || o.ServingOptions.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid serving.bind-port %d", o.ServingOptions.BindPort))
	}
	if o.TenantOptions.ConfigFile == "" {
		errs = append(errs, fmt.Errorf("tenant.config-file is required"))
	}
	switch o.ServingOptions.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("invalid serving.mode %q, must be debug|release|test", o.ServingOptions.Mode))
	}
	return errs
}

// ApplyTo maps the serving options onto the generic server's Config.
func (o *Options) ApplyTo(c *server.Config) error {
	c.BindAddress = o.ServingOptions.BindAddress
	c.BindPort = o.ServingOptions.BindPort
	c.ShutdownTimeout = o.ServingOptions.ShutdownTimeout
	switch o.ServingOptions.Mode {
	case "debug":
		c.Mode = "debug"
	case "test":
		c.Mode = "test"
	default:
		c.Mode = "release"
	}
	return nil
}
