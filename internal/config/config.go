// Package config provides environment configuration for the API server.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSystemPrompt is used when a request carries no system prompt.
const DefaultSystemPrompt = "You are a helpful assistant. Show your thinking process step by step."

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Azure OpenAI settings
	AzureAPIKey          string
	AzureEndpoint        string
	AzureModelDeployment string
	AzureAPIVersion      string

	// Anthropic settings
	AnthropicAPIKey string

	// Provider selection
	DefaultLLM string

	// Compliance audit settings
	ComplianceLogDir        string
	EnableComplianceLogging bool
	AuditQueueSize          int

	// NATS audit transport settings
	NATSAuditEnabled bool
	NATSURL          string
	NATSCAFile       string
	NATSCertFile     string
	NATSKeyFile      string
	NATSToken        string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Prompting
	SystemPrompt string

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Azure OpenAI
		AzureAPIKey:          getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureEndpoint:        getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureModelDeployment: getEnv("AZURE_OPENAI_MODEL_DEPLOYMENT", "gpt-5-nano"),
		AzureAPIVersion:      getEnv("AZURE_OPENAI_API_VERSION", "2025-03-01-preview"),

		// Anthropic
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		// Provider
		DefaultLLM: getEnv("DEFAULT_LLM", "azure"),

		// Compliance audit
		ComplianceLogDir:        getEnv("COMPLIANCE_LOG_DIR", "compliance_logs"),
		EnableComplianceLogging: getBoolEnv("ENABLE_COMPLIANCE_LOGGING", true),
		AuditQueueSize:          getIntEnv("AUDIT_QUEUE_SIZE", 1024),

		// NATS
		NATSAuditEnabled: getBoolEnv("NATS_AUDIT_ENABLED", false),
		NATSURL:          getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:       getEnv("NATS_CA_FILE", ""),
		NATSCertFile:     getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:      getEnv("NATS_KEY_FILE", ""),
		NATSToken:        getEnv("NATS_TOKEN", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Prompting
		SystemPrompt: getEnv("SYSTEM_PROMPT", DefaultSystemPrompt),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Validate checks that the selected provider has its credentials set.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DefaultLLM) {
	case "azure", "":
		var missing []string
		if c.AzureAPIKey == "" {
			missing = append(missing, "AZURE_OPENAI_API_KEY")
		}
		if c.AzureEndpoint == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
		if len(missing) > 0 {
			return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return errors.New("missing required environment variables: ANTHROPIC_API_KEY")
		}
	default:
		return errors.New("unknown DEFAULT_LLM provider: " + c.DefaultLLM)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
