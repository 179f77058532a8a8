package client

import (
	"context"
	"fmt"

	"mentor/internal/config"
	"mentor/internal/logging"
)

// NewClient creates a client for the resolved provider. This is the main
// entry point for client creation.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	provider := cfg.Provider()
	logging.Debug("creating client", "provider", provider, "model", cfg.Model.Name)

	switch provider {
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	case "ollama":
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
