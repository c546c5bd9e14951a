package summarizer

import (
	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
)

type implSummarizer struct {
	backend   backend
	maxTokens int
	logger    logger.Logger
}

// New creates a Summarizer for the configured generator provider.
func New(cfg *config.Config, log logger.Logger) (Summarizer, error) {
	var b backend
	switch cfg.Generator.Provider {
	case config.ProviderGemini:
		if len(cfg.Gemini.APIKeys) == 0 {
			return nil, apperror.InvalidInput("gemini provider needs at least one api key")
		}
		b = newGeminiBackend(cfg.Gemini, log)
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, apperror.InvalidInput("openai provider needs an api key")
		}
		b = newOpenAIBackend(cfg.OpenAI)
	default:
		return nil, apperror.InvalidInput("unknown generator provider %q", cfg.Generator.Provider)
	}

	return &implSummarizer{
		backend:   b,
		maxTokens: cfg.Generator.MaxTokens,
		logger:    log,
	}, nil
}
