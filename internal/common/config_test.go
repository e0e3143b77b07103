package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := LoadConfig()
	cfg.LLM.Provider = ProviderOpenAI
	cfg.LLM.OpenAIKey = "sk-test"
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "Input Data", cfg.Paths.InputDir)
	assert.Equal(t, "Output", cfg.Paths.OutputDir)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Extraction.RenderDPI)
	assert.Equal(t, float32(0.7), cfg.Extraction.ConfidenceThreshold)
	assert.True(t, cfg.Extraction.UseVision)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Zero(t, cfg.LLM.RetryMax)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PA_PROVIDER", ProviderAnthropic)
	t.Setenv("PA_CONFIDENCE_THRESHOLD", "0.85")
	t.Setenv("PA_USE_VISION", "false")
	t.Setenv("PA_MAX_WORKERS", "8")
	t.Setenv("PA_LLM_TIMEOUT", "30s")

	cfg := LoadConfig()
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, float32(0.85), cfg.Extraction.ConfidenceThreshold)
	assert.False(t, cfg.Extraction.UseVision)
	assert.Equal(t, 8, cfg.Extraction.MaxWorkers)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("PA_MAX_WORKERS", "many")
	t.Setenv("PA_CONFIDENCE_THRESHOLD", "very high")

	cfg := LoadConfig()
	assert.Equal(t, 3, cfg.Extraction.MaxWorkers)
	assert.Equal(t, float32(0.7), cfg.Extraction.ConfidenceThreshold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:   "missing openai key",
			mutate: func(c *Config) { c.LLM.OpenAIKey = "" },
			errMsg: "OPENAI_API_KEY",
		},
		{
			name: "missing anthropic key",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderAnthropic
				c.LLM.AnthropicKey = ""
			},
			errMsg: "ANTHROPIC_API_KEY",
		},
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.LLM.Provider = "bedrock" },
			errMsg: "unsupported provider",
		},
		{
			name:   "empty input dir",
			mutate: func(c *Config) { c.Paths.InputDir = "" },
			errMsg: "input directory",
		},
		{
			name:   "threshold above one",
			mutate: func(c *Config) { c.Extraction.ConfidenceThreshold = 1.2 },
			errMsg: "confidence threshold",
		},
		{
			name:   "zero workers",
			mutate: func(c *Config) { c.Extraction.MaxWorkers = 0 },
			errMsg: "max workers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, ErrKindConfig, KindOf(err))
		})
	}
}
