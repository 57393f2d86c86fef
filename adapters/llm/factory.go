package llm

import (
	"context"
	"fmt"

	"github.com/satriahrh/refchat/config"
	"github.com/satriahrh/refchat/domain"
)

// New picks the provider client named by cfg.Backend.
func New(ctx context.Context, cfg *config.Config) (domain.Llm, error) {
	switch cfg.Backend {
	case config.BackendREST, "":
		return NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, nil), nil
	case config.BackendGenAI:
		client, err := NewGenAIClient(ctx, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, nil)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.Backend)
	}
}
