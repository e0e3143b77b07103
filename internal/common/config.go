package common

import (
	"os"
	"strconv"
	"time"
)

// Provider identifiers accepted by the extraction engine.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all application configuration. It is built once at the CLI
// boundary and threaded explicitly through constructors; core packages never
// read the process environment themselves.
type Config struct {
	Paths      PathsConfig
	Server     ServerConfig
	Extraction ExtractionConfig
	LLM        LLMConfig
	Log        LogConfig
}

// PathsConfig holds input/output directory locations.
type PathsConfig struct {
	InputDir  string
	OutputDir string
}

// ServerConfig holds REST server configuration.
type ServerConfig struct {
	Host string
	Port int
}

// ExtractionConfig holds document/pipeline processing settings.
type ExtractionConfig struct {
	RenderDPI           int     // rasterization DPI for scanned pages
	MinTextChars        int     // per-page text length below which the page is rendered
	ConfidenceThreshold float32 // filled vs. uncertain cutoff
	UseVision           bool
	MaxWorkers          int // batch worker pool size
}

// LLMConfig holds AI provider configuration.
type LLMConfig struct {
	Provider       string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
	MaxTokens      int
	Temperature    float32
	Timeout        time.Duration
	RetryMax       int // 0 = no automatic retries
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// LoadConfig loads configuration from environment variables with defaults.
// CLI flags may override individual values afterwards.
func LoadConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:  getEnv("PA_INPUT_DIR", "Input Data"),
			OutputDir: getEnv("PA_OUTPUT_DIR", "Output"),
		},
		Server: ServerConfig{
			Host: getEnv("PA_API_HOST", "0.0.0.0"),
			Port: getEnvAsInt("PA_API_PORT", 8000),
		},
		Extraction: ExtractionConfig{
			RenderDPI:           getEnvAsInt("PA_RENDER_DPI", 200),
			MinTextChars:        getEnvAsInt("PA_MIN_TEXT_CHARS", 32),
			ConfidenceThreshold: getEnvAsFloat32("PA_CONFIDENCE_THRESHOLD", 0.7),
			UseVision:           getEnvAsBool("PA_USE_VISION", true),
			MaxWorkers:          getEnvAsInt("PA_MAX_WORKERS", 3),
		},
		LLM: LLMConfig{
			Provider:       getEnv("PA_PROVIDER", ProviderOpenAI),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o"),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens:      getEnvAsInt("PA_MAX_TOKENS", 4096),
			Temperature:    getEnvAsFloat32("PA_TEMPERATURE", 0.1),
			Timeout:        getEnvAsDuration("PA_LLM_TIMEOUT", 120*time.Second),
			RetryMax:       getEnvAsInt("PA_LLM_RETRY_MAX", 0),
		},
		Log: LogConfig{
			Level:  getEnv("PA_LOG_LEVEL", "info"),
			Format: getEnv("PA_LOG_FORMAT", "text"),
		},
	}
}

// Validate checks that the configuration is usable for processing.
// Called at startup, before any folder is touched.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIKey == "" {
			return NewConfigError("OPENAI_API_KEY is required for provider openai")
		}
	case ProviderAnthropic:
		if c.LLM.AnthropicKey == "" {
			return NewConfigError("ANTHROPIC_API_KEY is required for provider anthropic")
		}
	default:
		return NewConfigError("unsupported provider: " + c.LLM.Provider)
	}
	if c.Paths.InputDir == "" {
		return NewConfigError("input directory is required")
	}
	if c.Extraction.ConfidenceThreshold < 0 || c.Extraction.ConfidenceThreshold > 1 {
		return NewConfigError("confidence threshold must be within [0, 1]")
	}
	if c.Extraction.MaxWorkers < 1 {
		return NewConfigError("max workers must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
