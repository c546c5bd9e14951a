package summarizer

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
)

const openAIService = "openai"

type openAIBackend struct {
	client *openai.Client
	model  string
}

func newOpenAIBackend(cfg config.OpenAIConfig) *openAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.ChatModel,
	}
}

func (o *openAIBackend) name() string { return openAIService }

func (o *openAIBackend) complete(ctx context.Context, req completion) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   req.maxTokens,
		Temperature: req.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.system},
			{Role: openai.ChatMessageRoleUser, Content: req.prompt},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apperror.FromHTTPStatus(openAIService, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return apperror.FromHTTPStatus(openAIService, reqErr.HTTPStatusCode, err)
	}
	return apperror.ServiceUnavailable(openAIService, err)
}
