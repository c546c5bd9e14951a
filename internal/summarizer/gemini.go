package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
)

const geminiService = "gemini"

type geminiBackend struct {
	apiKeys []string
	model   string
	baseURL string
	logger  logger.Logger

	mu         sync.Mutex
	currentKey int
}

func newGeminiBackend(cfg config.GeminiConfig, log logger.Logger) *geminiBackend {
	return &geminiBackend{
		apiKeys: cfg.APIKeys,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		logger:  log,
	}
}

func (g *geminiBackend) name() string { return geminiService }

// complete calls GenerateContent, moving to the next API key whenever the
// current one is rate limited. Once every key has been tried the run fails
// as rate limited.
func (g *geminiBackend) complete(ctx context.Context, req completion) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.system, genai.RoleUser),
	}
	if req.maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.maxTokens)
	}
	if req.temperature > 0 {
		genCfg.Temperature = genai.Ptr(req.temperature)
	}

	var lastErr error
	for range len(g.apiKeys) {
		keyIndex, key := g.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
		})
		if err != nil {
			return "", apperror.Wrap(apperror.CodeInvalidInput, "create gemini client", err)
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.prompt), genCfg)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", keyIndex+1)
				g.rotateKey(keyIndex)
				lastErr = err
				continue
			}
			return "", classifyGemini(err)
		}

		return responseText(result), nil
	}

	return "", apperror.RateLimited(geminiService, fmt.Errorf("all %d API keys exhausted: %w", len(g.apiKeys), lastErr))
}

func (g *geminiBackend) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey moves past from unless another caller already did.
func (g *geminiBackend) rotateKey(from int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == from {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func classifyGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return apperror.FromHTTPStatus(geminiService, apiErr.Code, err)
	}
	return apperror.ServiceUnavailable(geminiService, err)
}
