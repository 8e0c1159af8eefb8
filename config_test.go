package quizbuilder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Model.Provider != ProviderOpenAI || cfg.Model.Temperature != 0.8 || cfg.Model.MaxTokens != 500 {
		t.Fatalf("unexpected model defaults: %+v", cfg.Model)
	}
	if cfg.Model.APIKey != "sk-test" {
		t.Fatalf("expected API key from environment, got %q", cfg.Model.APIKey)
	}
	if cfg.Port != "8180" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("PORT", "9000")

	path := writeConfig(t, `model:
  provider: gemini
  model: gemini-pro
  temperature: 0.5
  max_tokens: 400
database: /tmp/quiz.db
call_timeout: 30s
passage_limit: 2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Model.Provider != ProviderGemini || cfg.Model.Model != "gemini-pro" {
		t.Fatalf("unexpected model: %+v", cfg.Model)
	}
	if cfg.Model.Temperature != 0.5 || cfg.Model.MaxTokens != 400 {
		t.Fatalf("unexpected tuning: %+v", cfg.Model)
	}
	if cfg.Model.APIKey != "gm-test" {
		t.Fatalf("expected Gemini key from environment, got %q", cfg.Model.APIKey)
	}
	if cfg.CallTimeout != 30*time.Second {
		t.Fatalf("expected 30s call timeout, got %s", cfg.CallTimeout)
	}
	if cfg.GenerationTimeout != 10*time.Minute {
		t.Fatalf("expected default generation timeout, got %s", cfg.GenerationTimeout)
	}
	if cfg.Port != "9000" || cfg.Database != "/tmp/quiz.db" || cfg.PassageLimit != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "model:\n  provider: openai\n  temprature: 0.5\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a misspelled field")
	}
}

func TestLoadConfigRejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "port: \"1\"\n---\nport: \"2\"\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for multiple documents")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"provider", func(c *Config) { c.Model.Provider = "llama" }},
		{"model", func(c *Config) { c.Model.Model = "" }},
		{"temperature", func(c *Config) { c.Model.Temperature = 3 }},
		{"max tokens", func(c *Config) { c.Model.MaxTokens = 0 }},
		{"passage limit", func(c *Config) { c.PassageLimit = 0 }},
		{"timeout", func(c *Config) { c.CallTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestNewLLMRequiresAPIKey(t *testing.T) {
	mc := DefaultModelConfig()
	if _, err := NewLLM(t.Context(), mc); !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
}
