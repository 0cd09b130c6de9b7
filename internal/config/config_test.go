package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.ServerReadTimeout)
	assert.Equal(t, "gpt-5-nano", cfg.AzureModelDeployment)
	assert.Equal(t, "2025-03-01-preview", cfg.AzureAPIVersion)
	assert.Equal(t, "azure", cfg.DefaultLLM)
	assert.Equal(t, "compliance_logs", cfg.ComplianceLogDir)
	assert.True(t, cfg.EnableComplianceLogging)
	assert.Equal(t, 1024, cfg.AuditQueueSize)
	assert.False(t, cfg.NATSAuditEnabled)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AZURE_OPENAI_MODEL_DEPLOYMENT", "gpt-5")
	t.Setenv("ENABLE_COMPLIANCE_LOGGING", "false")
	t.Setenv("AUDIT_QUEUE_SIZE", "256")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("SYSTEM_PROMPT", "Answer briefly.")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "gpt-5", cfg.AzureModelDeployment)
	assert.False(t, cfg.EnableComplianceLogging)
	assert.Equal(t, 256, cfg.AuditQueueSize)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "Answer briefly.", cfg.SystemPrompt)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("AUDIT_QUEUE_SIZE", "not-a-number")
	t.Setenv("ENABLE_COMPLIANCE_LOGGING", "maybe")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	cfg := Load()

	assert.Equal(t, 1024, cfg.AuditQueueSize)
	assert.True(t, cfg.EnableComplianceLogging)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestValidateAzureProvider(t *testing.T) {
	cfg := &Config{DefaultLLM: "azure"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "AZURE_OPENAI_ENDPOINT")

	cfg.AzureAPIKey = "key"
	cfg.AzureEndpoint = "https://example.openai.azure.com"
	assert.NoError(t, cfg.Validate())
}

func TestValidateAnthropicProvider(t *testing.T) {
	cfg := &Config{DefaultLLM: "anthropic"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	cfg.AnthropicAPIKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg := &Config{DefaultLLM: "cohere"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cohere")
}
