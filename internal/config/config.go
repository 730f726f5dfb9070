// Package config provides configuration management for Glimpse. Settings are
// loaded from environment variables with the GLIMPSE_ prefix, with sensible
// defaults for every option; an optional YAML file can override individual
// values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the Glimpse assistant.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Memory    MemoryConfig    `yaml:"memory"`
	Capture   CaptureConfig   `yaml:"capture"`
	Search    SearchConfig    `yaml:"search"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Security  SecurityConfig  `yaml:"security"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host string `yaml:"host"` // Server host (default: 127.0.0.1)
	Port int    `yaml:"port"` // Server port (default: 8750)
}

// LLMConfig contains chat-completion endpoint configuration.
type LLMConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`        // OpenAI-compatible endpoint; empty uses the provider default
	Model          string  `yaml:"model"`           // Model name (default: llama3.1-8b)
	Temperature    float64 `yaml:"temperature"`     // Sampling temperature (default: 0.2)
	TopP           float64 `yaml:"top_p"`           // Nucleus sampling (default: 0.9)
	MaxTokens      int     `yaml:"max_tokens"`      // Completion token cap (default: 2000)
	SystemPrompt   string  `yaml:"system_prompt"`   // Base system prompt
	CacheResponses bool    `yaml:"cache_responses"` // Cache completed answers (default: true)
}

// MemoryConfig contains conversation memory settings.
type MemoryConfig struct {
	Enabled            bool `yaml:"enabled"`              // Record history (default: true)
	MaxContextMessages int  `yaml:"max_context_messages"` // Messages injected per prompt (default: 10)
	RetentionHours     int  `yaml:"retention_hours"`      // Retention window (default: 24)
	Anonymize          bool `yaml:"anonymize"`            // Redact sensitive patterns (default: false)
	AutoSummarize      bool `yaml:"auto_summarize"`       // Summarize long sessions (default: false)
}

// CaptureConfig contains OCR transcript settings.
type CaptureConfig struct {
	MaxOCRHistory      int `yaml:"max_ocr_history"`      // Snapshots retained (default: 200)
	MaxTranscriptChars int `yaml:"max_transcript_chars"` // Rendered transcript cap (default: 3000)
}

// SearchConfig contains web-search client settings.
type SearchConfig struct {
	MaxResults        int    `yaml:"max_results"`         // Default result count (default: 5)
	SafeSearch        string `yaml:"safesearch"`          // off/moderate/strict (default: moderate)
	TimeLimit         string `yaml:"timelimit"`           // Default recency window (default: y)
	RequestsPerMinute int    `yaml:"requests_per_minute"` // Outbound pacing (default: 30)
}

// OptimizerConfig contains gate and cache settings.
type OptimizerConfig struct {
	OCRRateLimit int `yaml:"ocr_rate_limit"` // Max OCR calls per minute (default: 10)
	WebRateLimit int `yaml:"web_rate_limit"` // Max web searches per minute (default: 20)
	MaxCacheSize int `yaml:"max_cache_size"` // Cache entry bound (default: 1000)
}

// SecurityConfig contains authentication settings.
type SecurityConfig struct {
	Mode     string `yaml:"mode"`      // development or production (default: development)
	APIToken string `yaml:"api_token"` // Bearer token required in production
}

// LoadConfig builds the configuration from environment variables and
// defaults.
func LoadConfig() (*Config, error) {
	return buildBaseConfig(), nil
}

// LoadConfigFile builds the configuration from environment variables, then
// overrides it with the YAML file at path.
func LoadConfigFile(path string) (*Config, error) {
	cfg := buildBaseConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func buildBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("GLIMPSE_HOST", "127.0.0.1"),
			Port: getEnvInt("GLIMPSE_PORT", 8750),
		},
		LLM: LLMConfig{
			APIKey:         getEnv("GLIMPSE_API_KEY", ""),
			BaseURL:        getEnv("GLIMPSE_LLM_BASE_URL", ""),
			Model:          getEnv("GLIMPSE_MODEL", "llama3.1-8b"),
			Temperature:    getEnvFloat("GLIMPSE_TEMPERATURE", 0.2),
			TopP:           getEnvFloat("GLIMPSE_TOP_P", 0.9),
			MaxTokens:      getEnvInt("GLIMPSE_MAX_TOKENS", 2000),
			SystemPrompt:   getEnv("GLIMPSE_SYSTEM_PROMPT", "You are a helpful personal assistant. Be concise and helpful."),
			CacheResponses: getEnvBool("GLIMPSE_CACHE_RESPONSES", true),
		},
		Memory: MemoryConfig{
			Enabled:            getEnvBool("GLIMPSE_CONVERSATION_MEMORY", true),
			MaxContextMessages: getEnvInt("GLIMPSE_MAX_CONTEXT_MESSAGES", 10),
			RetentionHours:     getEnvInt("GLIMPSE_DATA_RETENTION_HOURS", 24),
			Anonymize:          getEnvBool("GLIMPSE_ANONYMIZE_DATA", false),
			AutoSummarize:      getEnvBool("GLIMPSE_AUTO_SUMMARIZE_CONTEXT", false),
		},
		Capture: CaptureConfig{
			MaxOCRHistory:      getEnvInt("GLIMPSE_MAX_OCR_HISTORY", 200),
			MaxTranscriptChars: getEnvInt("GLIMPSE_MAX_TRANSCRIPT_CHARS", 3000),
		},
		Search: SearchConfig{
			MaxResults:        getEnvInt("GLIMPSE_WEB_SEARCH_MAX_RESULTS", 5),
			SafeSearch:        getEnv("GLIMPSE_WEB_SEARCH_SAFESEARCH", "moderate"),
			TimeLimit:         getEnv("GLIMPSE_WEB_SEARCH_TIMELIMIT", "y"),
			RequestsPerMinute: getEnvInt("GLIMPSE_WEB_SEARCH_RPM", 30),
		},
		Optimizer: OptimizerConfig{
			OCRRateLimit: getEnvInt("GLIMPSE_OCR_RATE_LIMIT", 10),
			WebRateLimit: getEnvInt("GLIMPSE_WEB_RATE_LIMIT", 20),
			MaxCacheSize: getEnvInt("GLIMPSE_MAX_CACHE_SIZE", 1000),
		},
		Security: SecurityConfig{
			Mode:     getEnv("GLIMPSE_SECURITY_MODE", "development"),
			APIToken: getEnv("GLIMPSE_API_TOKEN", ""),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. It recognizes "true", "1", "yes" and "false", "0", "no"
// (case-insensitive).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
