package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	want := []string{"http://localhost:5173", "http://localhost:3000"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.Model() != "gpt-4o-mini" {
		t.Errorf("Model() = %q, want gpt-4o-mini", cfg.Model())
	}
	if cfg.ProviderTimeout != 0 || cfg.MaxInFlight != 0 {
		t.Errorf("hardening knobs should default to off, got %v / %d", cfg.ProviderTimeout, cfg.MaxInFlight)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should default to enabled")
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("Validate() = %v", errs)
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example, https://admin.example,,")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-nano")
	t.Setenv("PROVIDER_TIMEOUT", "45s")
	t.Setenv("MAX_IN_FLIGHT", "8")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr() != ":8081" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	want := []string{"https://app.example", "https://admin.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.OpenAI.APIKey != "sk-test" || cfg.Model() != "gpt-4.1-nano" {
		t.Errorf("OpenAI = %+v", cfg.OpenAI)
	}
	if cfg.ProviderTimeout != 45*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if cfg.MaxInFlight != 8 {
		t.Errorf("MaxInFlight = %d", cfg.MaxInFlight)
	}
	if !cfg.Log.JSON {
		t.Error("Log.JSON should be true")
	}
	if w := cfg.Warnings(); len(w) != 0 {
		t.Errorf("Warnings() = %v", w)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "persona-proxy.yaml")
	content := `
port: "9000"
provider: ollama
allowed_origins:
  - https://one.example
  - https://two.example
ollama:
  base_url: http://ollama:11434
  model: llama3.2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9000" || cfg.Provider != ProviderOllama {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Model() != "llama3.2" || cfg.Ollama.BaseURL != "http://ollama:11434" {
		t.Errorf("Ollama = %+v", cfg.Ollama)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"http://a", []string{"http://a"}},
		{" http://a , http://b ", []string{"http://a", "http://b"}},
		{"http://a,,", []string{"http://a"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:     "3000",
			Provider: ProviderOpenAI,
			OpenAI:   OpenAIConfig{Model: "gpt-4o-mini"},
			OTel:     OTelConfig{SampleRate: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "port"},
		{"unknown provider", func(c *Config) { c.Provider = "bard" }, "provider"},
		{"missing model", func(c *Config) { c.OpenAI.Model = "" }, "openai.model"},
		{"ollama without url", func(c *Config) { c.Provider = ProviderOllama; c.Ollama.Model = "x" }, "ollama.base_url"},
		{"negative timeout", func(c *Config) { c.ProviderTimeout = -time.Second }, "provider_timeout"},
		{"negative in flight", func(c *Config) { c.MaxInFlight = -1 }, "max_in_flight"},
		{"sample rate", func(c *Config) { c.OTel.SampleRate = 1.5 }, "otel.sample_rate"},
	}

	if errs := Validate(valid()); len(errs) != 0 {
		t.Fatalf("valid config reported %v", errs)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			errs := Validate(cfg)
			found := false
			for _, err := range errs {
				if ve, ok := err.(ValidationError); ok && ve.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want error on %s", errs, tt.field)
			}
		})
	}
}

func TestWarnings_MissingKey(t *testing.T) {
	cfg := &Config{Provider: ProviderOpenAI, AllowedOrigins: []string{"http://a"}}
	if w := cfg.Warnings(); len(w) != 1 {
		t.Errorf("Warnings() = %v, want one entry", w)
	}
}
