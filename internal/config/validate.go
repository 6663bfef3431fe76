package config

import (
	"fmt"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate returns fatal configuration errors. An empty slice means the
// process can start.
func Validate(cfg *Config) []error {
	var errs []error

	if p, err := strconv.Atoi(cfg.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, ValidationError{"port", "must be a number between 1 and 65535"})
	}

	switch cfg.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderGemini, ProviderEcho:
	default:
		errs = append(errs, ValidationError{"provider", "must be one of 'openai', 'ollama', 'gemini', 'echo'"})
	}

	if cfg.Model() == "" {
		errs = append(errs, ValidationError{cfg.Provider + ".model", "required"})
	}
	if cfg.Provider == ProviderOllama && cfg.Ollama.BaseURL == "" {
		errs = append(errs, ValidationError{"ollama.base_url", "required when provider is 'ollama'"})
	}
	if cfg.ProviderTimeout < 0 {
		errs = append(errs, ValidationError{"provider_timeout", "must not be negative"})
	}
	if cfg.MaxInFlight < 0 {
		errs = append(errs, ValidationError{"max_in_flight", "must not be negative"})
	}
	if cfg.OTel.SampleRate < 0 || cfg.OTel.SampleRate > 1 {
		errs = append(errs, ValidationError{"otel.sample_rate", "must be between 0 and 1"})
	}

	return errs
}

// Warnings lists settings that let the process start but will make every
// completion fail.
func (c *Config) Warnings() []string {
	var warnings []string
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY is empty; completions will be rejected by the provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			warnings = append(warnings, "GEMINI_API_KEY is empty; completions will be rejected by the provider")
		}
	}
	if len(c.AllowedOrigins) == 0 {
		warnings = append(warnings, "allow-list is empty; every browser origin will be rejected")
	}
	return warnings
}
