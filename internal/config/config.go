package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Generator     GeneratorConfig     `yaml:"generator"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Whisper       WhisperConfig       `yaml:"whisper"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Server        ServerConfig        `yaml:"server"`
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model"`
	ChatModel          string `yaml:"chat_model"`
	Language           string `yaml:"language"`
}

type GeminiConfig struct {
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
	BaseURL string   `yaml:"base_url"`
}

type GeneratorConfig struct {
	Provider  string `yaml:"provider"`
	MaxTokens int    `yaml:"max_tokens"`
}

type TranscriptionConfig struct {
	Provider            string        `yaml:"provider"`
	Mode                string        `yaml:"mode"`
	ChunkCeilingMB      float64       `yaml:"chunk_ceiling_mb"`
	MaxChunks           int           `yaml:"max_chunks"`
	MaxConcurrent       int           `yaml:"max_concurrent"`
	MaxRetries          int           `yaml:"max_retries"`
	RetryInitialBackoff time.Duration `yaml:"retry_initial_backoff"`
	RetryMaxBackoff     time.Duration `yaml:"retry_max_backoff"`
	MergeSpeakerTurns   bool          `yaml:"merge_speaker_turns"`
	MaxFileSizeMB       float64       `yaml:"max_file_size_mb"`
	AllowedExtensions   []string      `yaml:"allowed_extensions"`
}

// WhisperConfig drives a local whisper.cpp binary, used when
// transcription.provider is "whispercpp".
type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	BinaryPath   string `yaml:"binary_path"`
	ProbePath    string `yaml:"probe_path"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

type StorageConfig struct {
	Provider       string `yaml:"provider"`
	Scheme         string `yaml:"scheme"`
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	ForcePathStyle bool   `yaml:"force_path_style"`
	LocalPath      string `yaml:"local_path"`
}

type AuthConfig struct {
	Method        string   `yaml:"method"`
	Secret        string   `yaml:"secret"`
	PublicKeyPath string   `yaml:"public_key_path"`
	Issuer        string   `yaml:"issuer"`
	Audience      []string `yaml:"audience"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	FrontendURL     string        `yaml:"frontend_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type PathsConfig struct {
	Audio           string `yaml:"audio"`
	Templates       string `yaml:"templates"`
	Reports         string `yaml:"reports"`
	Transcripts     string `yaml:"transcripts"`
	Temp            string `yaml:"temp"`
	Inbox           string `yaml:"inbox"`
	DefaultTemplate string `yaml:"default_template"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

const (
	ModePlain    = "plain"
	ModeSpeakers = "speakers"

	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderWhisperCpp = "whispercpp"

	StorageS3    = "s3"
	StorageLocal = "local"

	maxTranscriptionConcurrency = 5
)

// Validate fills defaults and rejects settings the pipeline cannot run with.
// Credentials are checked by RequireCredentials, since offline commands
// such as split do not need them.
func (c *Config) Validate() error {
	c.applyDefaults()

	if c.Transcription.ChunkCeilingMB <= 0 {
		return fmt.Errorf("transcription.chunk_ceiling_mb must be positive")
	}
	if c.Transcription.MaxRetries < 0 {
		return fmt.Errorf("transcription.max_retries must not be negative")
	}
	if c.Transcription.MaxConcurrent > maxTranscriptionConcurrency {
		return fmt.Errorf("transcription.max_concurrent must be at most %d", maxTranscriptionConcurrency)
	}
	switch c.Transcription.Mode {
	case ModePlain, ModeSpeakers:
	default:
		return fmt.Errorf("transcription.mode must be %q or %q", ModePlain, ModeSpeakers)
	}
	switch c.Transcription.Provider {
	case ProviderOpenAI:
	case ProviderWhisperCpp:
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required for the %q provider", ProviderWhisperCpp)
		}
		if c.Transcription.Mode == ModeSpeakers {
			return fmt.Errorf("transcription.mode %q needs the %q provider", ModeSpeakers, ProviderOpenAI)
		}
	default:
		return fmt.Errorf("transcription.provider must be %q or %q", ProviderOpenAI, ProviderWhisperCpp)
	}
	switch c.Generator.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("generator.provider must be %q or %q", ProviderOpenAI, ProviderGemini)
	}
	switch c.Storage.Provider {
	case StorageS3, StorageLocal:
	default:
		return fmt.Errorf("storage.provider must be %q or %q", StorageS3, StorageLocal)
	}
	if c.Paths.Audio == "" || c.Paths.Reports == "" {
		return fmt.Errorf("paths.audio and paths.reports are required")
	}

	return nil
}

// RequireCredentials checks the secrets needed to talk to hosted services.
func (c *Config) RequireCredentials() error {
	var missing []string
	needsOpenAI := c.Transcription.Provider == ProviderOpenAI || c.Generator.Provider == ProviderOpenAI
	if needsOpenAI && c.OpenAI.APIKey == "" {
		missing = append(missing, "openai.api_key (OPENAI_API_KEY)")
	}
	if c.Generator.Provider == ProviderGemini && len(c.Gemini.APIKeys) == 0 {
		missing = append(missing, "gemini.api_keys (GEMINI_API_KEYS)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireServer checks the settings only the HTTP surface needs.
func (c *Config) RequireServer() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket (STORAGE_BUCKET) is required")
	}
	if c.Auth.Secret == "" && c.Auth.PublicKeyPath == "" {
		return fmt.Errorf("auth.secret (AUTH_JWT_SECRET) or auth.public_key_path is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4.1"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Generator.Provider == "" {
		c.Generator.Provider = ProviderOpenAI
	}
	if c.Generator.MaxTokens == 0 {
		c.Generator.MaxTokens = 4000
	}

	t := &c.Transcription
	if t.Provider == "" {
		t.Provider = ProviderOpenAI
	}
	if t.Mode == "" {
		t.Mode = ModePlain
	}
	if t.ChunkCeilingMB == 0 {
		t.ChunkCeilingMB = 25
	}
	if t.MaxChunks == 0 {
		t.MaxChunks = 99
	}
	if t.MaxConcurrent <= 0 {
		t.MaxConcurrent = 3
	}
	if t.RetryInitialBackoff == 0 {
		t.RetryInitialBackoff = time.Second
	}
	if t.RetryMaxBackoff == 0 {
		t.RetryMaxBackoff = 30 * time.Second
	}
	if t.MaxFileSizeMB == 0 {
		t.MaxFileSizeMB = 100
	}
	if len(t.AllowedExtensions) == 0 {
		t.AllowedExtensions = []string{".mp3", ".wav", ".m4a", ".flac"}
	}

	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.ProbePath == "" {
		c.FFmpeg.ProbePath = "ffprobe"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "libmp3lame"
	}
	if c.FFmpeg.AudioBitrate == "" {
		c.FFmpeg.AudioBitrate = "128k"
	}

	if c.Storage.Provider == "" {
		c.Storage.Provider = StorageS3
	}
	if c.Storage.Scheme == "" {
		c.Storage.Scheme = "gs"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "auto"
	}
	if c.Storage.LocalPath == "" {
		c.Storage.LocalPath = "data/storage"
	}

	if c.Auth.Method == "" {
		c.Auth.Method = "HS256"
	}

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = "http://localhost:3000"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 15 * time.Minute
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Paths.Audio == "" {
		c.Paths.Audio = "data/audio_files"
	}
	if c.Paths.Templates == "" {
		c.Paths.Templates = "data/report_templates"
	}
	if c.Paths.Reports == "" {
		c.Paths.Reports = "data/reports"
	}
	if c.Paths.Transcripts == "" {
		c.Paths.Transcripts = "data/transcripts"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.DefaultTemplate == "" {
		c.Paths.DefaultTemplate = "default_report_template.docx"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
}
