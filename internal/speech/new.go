package speech

import (
	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/pkg/executor"
)

const serviceName = "speech-to-text"

type implTranscriber struct {
	client             *openai.Client
	transcriptionModel string
	chatModel          string
	language           string
	logger             logger.Logger
}

// New picks the Transcriber named by transcription.provider.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	if cfg.Transcription.Provider == config.ProviderWhisperCpp {
		return NewWhisperCpp(cfg.Whisper, cfg.FFmpeg.BinaryPath, exec, log)
	}
	return NewOpenAI(cfg.OpenAI, log)
}

// NewOpenAI creates a Transcriber backed by the OpenAI audio and chat APIs.
func NewOpenAI(cfg config.OpenAIConfig, log logger.Logger) (Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, apperror.InvalidInput("openai api key is required for transcription")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &implTranscriber{
		client:             openai.NewClientWithConfig(clientCfg),
		transcriptionModel: cfg.TranscriptionModel,
		chatModel:          cfg.ChatModel,
		language:           cfg.Language,
		logger:             log,
	}, nil
}
