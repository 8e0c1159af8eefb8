package quizbuilder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the command line tool and the web server
type Config struct {
	Model             ModelConfig   `yaml:"model"`
	Database          string        `yaml:"database"`
	Port              string        `yaml:"port"`
	SessionSecret     string        `yaml:"session_secret"`
	LogDir            string        `yaml:"log_dir"`
	PassageLimit      int           `yaml:"passage_limit"`
	CallTimeout       time.Duration `yaml:"call_timeout"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
}

// DefaultConfig returns the settings used when no config file is given
func DefaultConfig() Config {
	return Config{
		Model:             DefaultModelConfig(),
		Database:          "./quiz.db",
		Port:              "8180",
		LogDir:            "log",
		PassageLimit:      DefaultPassageLimit,
		CallTimeout:       time.Minute,
		GenerationTimeout: 10 * time.Minute,
	}
}

// LoadConfig reads a YAML config file over the defaults, then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := parseConfig(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseConfig(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("failed to parse config: multiple YAML documents are not supported")
		}
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from the environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	switch c.Model.Provider {
	case ProviderGemini:
		if key := getenv("GEMINI_API_KEY"); key != "" {
			c.Model.APIKey = key
		}
	default:
		if key := getenv("OPENAI_API_KEY"); key != "" {
			c.Model.APIKey = key
		}
	}
	if port := getenv("PORT"); port != "" {
		c.Port = port
	}
	if secret := getenv("SESSION_SECRET"); secret != "" {
		c.SessionSecret = secret
	}
	if db := getenv("QUIZ_DB"); db != "" {
		c.Database = db
	}
}

// Validate checks the settings that do not depend on which front end runs
func (c Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if c.PassageLimit <= 0 {
		return fmt.Errorf("%w: passage_limit must be positive", ErrInvalidConfiguration)
	}
	if c.CallTimeout < 0 || c.GenerationTimeout < 0 {
		return fmt.Errorf("%w: timeouts cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}
