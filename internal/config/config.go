package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderEcho   = "echo"
)

// DefaultAllowedOrigins are the local development origins admitted when
// ALLOWED_ORIGINS is unset.
const DefaultAllowedOrigins = "http://localhost:5173,http://localhost:3000"

// Config is built once at startup and handed to components by value or
// pointer. Nothing mutates it afterwards.
type Config struct {
	Port            string        `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	Provider        string        `mapstructure:"provider"`
	StaticDir       string        `mapstructure:"static_dir"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	MaxInFlight     int64         `mapstructure:"max_in_flight"`

	SystemPrompt     string `mapstructure:"system_prompt"`
	SystemPromptFile string `mapstructure:"system_prompt_file"`

	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Ollama  OllamaConfig  `mapstructure:"ollama"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	OTel    OTelConfig    `mapstructure:"otel"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type OTelConfig struct {
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// envBindings maps config keys to the environment variable names operators
// already use for this service.
var envBindings = map[string]string{
	"port":               "PORT",
	"allowed_origins":    "ALLOWED_ORIGINS",
	"provider":           "LLM_PROVIDER",
	"static_dir":         "STATIC_DIR",
	"provider_timeout":   "PROVIDER_TIMEOUT",
	"max_in_flight":      "MAX_IN_FLIGHT",
	"system_prompt":      "SYSTEM_PROMPT",
	"system_prompt_file": "SYSTEM_PROMPT_FILE",
	"openai.api_key":     "OPENAI_API_KEY",
	"openai.model":       "OPENAI_MODEL",
	"openai.base_url":    "OPENAI_BASE_URL",
	"ollama.base_url":    "OLLAMA_BASE_URL",
	"ollama.model":       "OLLAMA_MODEL",
	"gemini.api_key":     "GEMINI_API_KEY",
	"gemini.model":       "GEMINI_MODEL",
	"log.level":          "LOG_LEVEL",
	"log.json":           "LOG_JSON",
	"metrics.enabled":    "METRICS_ENABLED",
	"otel.endpoint":      "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otel.sample_rate":   "OTEL_SAMPLE_RATE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("static_dir", "public")
	v.SetDefault("provider_timeout", "0s")
	v.SetDefault("max_in_flight", 0)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "gemma3:270m")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("otel.sample_rate", 1.0)
}

// New returns a viper instance with defaults and environment bindings
// installed. Callers may bind CLI flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads the optional config file and decodes everything into a Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return &cfg, nil
}

// ParseOrigins splits a comma-separated allow-list.
func ParseOrigins(raw string) []string {
	return normalizeOrigins(strings.Split(raw, ","))
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		// yaml lists arrive split already, env values may still carry commas
		for _, o := range strings.Split(entry, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Model returns the model identifier of the active provider.
func (c *Config) Model() string {
	switch c.Provider {
	case ProviderOllama:
		return c.Ollama.Model
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderEcho:
		return "echo"
	default:
		return c.OpenAI.Model
	}
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}
