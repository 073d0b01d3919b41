// Package tenant implements the tenant resolution and isolation layer:
// loading tenant configuration, resolving a request to a tenant, and owning
// every tenant's database pool and cache state.
package tenant

import "time"

// SearchType selects the knowledge-base retrieval strategy for a tenant.
type SearchType string

const (
	SearchSemantic SearchType = "SEMANTIC"
	SearchHybrid   SearchType = "HYBRID"
)

// DatabaseConfig carries the connection parameters for one tenant's
// PostgreSQL instance.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// KnowledgeBaseConfig binds a tenant to its slice of the managed
// knowledge-base retrieval service.
type KnowledgeBaseConfig struct {
	ID         string     `yaml:"id"`
	Prefix     string     `yaml:"prefix"`
	Bucket     string     `yaml:"bucket"`
	Region     string     `yaml:"region"`
	SearchType SearchType `yaml:"search_type"`
	MaxResults int        `yaml:"max_results"`
}

// AgentType names which agent handles a chat request.
type AgentType string

const (
	AgentAuto          AgentType = "auto"
	AgentPostgres      AgentType = "postgres"
	AgentKnowledgeBase AgentType = "knowledge_base"
	AgentFallback      AgentType = "fallback"
)

// Settings carries the generation and feature-flag fields a tenant may
// override per request, within the bounds the registry enforces.
type Settings struct {
	MaxTokens               int       `yaml:"max_tokens"`
	Temperature              float64   `yaml:"temperature"`
	DefaultAgentType         AgentType `yaml:"default_agent_type"`
	ResponseLanguage         string    `yaml:"response_language"`
	EnablePostgresAgent      bool      `yaml:"enable_postgres_agent"`
	EnableKnowledgeBaseAgent bool      `yaml:"enable_knowledge_base_agent"`
	EnableFallbackAgent      bool      `yaml:"enable_fallback_agent"`
}

// WebhookConfig is parsed but inert: the core gateway never dials out to it.
// See DESIGN.md for the reasoning behind keeping the field without wiring
// delivery.
type WebhookConfig struct {
	OnCompletion string `yaml:"on_completion"`
	OnError      string `yaml:"on_error"`
}

// ContactInfo is opaque operator metadata, carried through for admin display.
type ContactInfo struct {
	Owner string `yaml:"owner"`
	Email string `yaml:"email"`
}

// TenantConfig is immutable after Load. It is the validated, in-memory
// representation of one entry under `tenants:` in the configuration
// document (§6.1).
type TenantConfig struct {
	ID             string
	Name           string              `yaml:"name"`
	Description    string              `yaml:"description"`
	Language       string              `yaml:"language"`
	Database       DatabaseConfig      `yaml:"database"`
	KnowledgeBase  KnowledgeBaseConfig `yaml:"knowledge_base"`
	APIKeys        map[string]string   `yaml:"api_keys"`
	Settings       Settings            `yaml:"settings"`
	Webhooks       WebhookConfig       `yaml:"webhooks"`
	ContactInfo    ContactInfo         `yaml:"contact_info"`
	Model          string              `yaml:"model"`
}

// SecuritySettings is the global_settings.security block.
type SecuritySettings struct {
	RequireTenantHeader  bool   `yaml:"require_tenant_header"`
	DefaultOnMissing     bool   `yaml:"default_tenant_on_missing"`
	TenantHeaderName     string `yaml:"tenant_header_name"`
}

// LoggingSettings is the global_settings.logging block.
type LoggingSettings struct {
	Level      string `yaml:"level"`
	LogQueries bool   `yaml:"log_queries"`
}

// AWSSettings is the global_settings.aws block, carried through for
// provider plugins that key off a Bedrock model id.
type AWSSettings struct {
	Region       string `yaml:"region"`
	BedrockModel string `yaml:"bedrock_model"`
}

// GlobalPolicy is immutable, shared by every tenant's dispatch.
type GlobalPolicy struct {
	FallbackAgent      string           `yaml:"fallback_agent"`
	RetryCount         int              `yaml:"retry_count"`
	TimeoutSeconds     int              `yaml:"timeout_seconds"`
	Security           SecuritySettings `yaml:"security"`
	Logging            LoggingSettings  `yaml:"logging"`
	AWS                AWSSettings      `yaml:"aws"`
}

func (p GlobalPolicy) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// FeatureFlags is the top-level feature_flags block.
type FeatureFlags struct {
	EnableHybridSearch           bool `yaml:"enable_hybrid_search"`
	EnableStreamingResponses     bool `yaml:"enable_streaming_responses"`
	EnableConversationHistory    bool `yaml:"enable_conversation_history"`
}

// document is the raw shape of the configuration file (§6.1), decoded once
// into TenantConfig/GlobalPolicy after ${NAME} interpolation.
type document struct {
	DefaultTenant  string                    `yaml:"default_tenant"`
	Tenants        map[string]TenantConfig   `yaml:"tenants"`
	GlobalSettings GlobalPolicy              `yaml:"global_settings"`
	FeatureFlags   FeatureFlags              `yaml:"feature_flags"`
}
