// Package config resolves provider credentials and endpoint overrides.
//
// Resolution order for the chat command is: command-line flag, then the
// optional providers YAML file, then environment variables (optionally
// seeded from a .env file at startup).
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kuhul/internal/provider"
)

// Credentials holds per-provider API keys read from the environment.
type Credentials struct {
	OpenAI    string `env:"OPENAI_API_KEY"`
	Anthropic string `env:"ANTHROPIC_API_KEY"`
	Mistral   string `env:"MISTRAL_API_KEY"`
	DeepSeek  string `env:"DEEPSEEK_API_KEY"`
	Codestral string `env:"CODESTRAL_API_KEY"`
	Inference string `env:"INFERENCE_API_KEY"`
}

// LoadCredentials parses credentials from the environment.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := env.Parse(&c); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials from environment: %w", err)
	}
	return c, nil
}

// For returns the key for a provider name, or "" when none is set.
func (c Credentials) For(providerName string) string {
	switch providerName {
	case "openai":
		return c.OpenAI
	case "claude":
		return c.Anthropic
	case "mistral":
		return c.Mistral
	case "deepseek":
		return c.DeepSeek
	case "codestral":
		return c.Codestral
	case "inference":
		return c.Inference
	}
	return ""
}

// ProviderOverride overrides one provider's endpoint or key.
type ProviderOverride struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Overrides is the providers YAML file shape:
//
//	providers:
//	  openai:
//	    base_url: https://proxy.internal/v1
//	    api_key: sk-...
type Overrides struct {
	Providers map[string]ProviderOverride `yaml:"providers"`
}

// LoadOverrides reads an optional providers YAML file. An empty path or
// a missing file yields empty overrides; a present file must parse and
// may only name registered providers.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Overrides{}, nil
	}
	if err != nil {
		return Overrides{}, fmt.Errorf("read providers file %s: %w", path, err)
	}

	var o Overrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return Overrides{}, fmt.Errorf("parse providers file %s: %w", path, err)
	}
	for name := range o.Providers {
		if _, ok := provider.Registry[name]; !ok {
			return Overrides{}, fmt.Errorf("providers file %s: unknown provider %q", path, name)
		}
	}
	return o, nil
}
