// Package ai holds the provider independent parts of the optional LLM assistance.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const ProviderGemini = "gemini"

// Config stores AI-related configuration.
type Config struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig stores Gemini provider configuration.
type GeminiConfig struct {
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// Drafter suggests the company trait an outreach letter should mention.
type Drafter interface {
	DraftAspect(ctx context.Context, c *sponsor.Candidate) (string, error)
}

func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	provider := strings.ToLower(strings.TrimSpace(c.Provider))
	switch provider {
	case "", ProviderGemini:
		c.Provider = ProviderGemini
	default:
		return fmt.Errorf("unsupported ai provider %q", c.Provider)
	}

	if c.Gemini == nil {
		c.Gemini = &GeminiConfig{}
	}
	return nil
}
