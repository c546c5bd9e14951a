package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
	"github.com/nguyentantai21042004/audio-summarizer/pkg/executor"
)

const localServiceName = "whisper.cpp"

type whisperCpp struct {
	executor executor.Executor
	ffmpeg   string
	cfg      config.WhisperConfig
	logger   logger.Logger
}

// NewWhisperCpp creates a Transcriber that runs a local whisper.cpp binary.
// It only produces plain transcripts.
func NewWhisperCpp(cfg config.WhisperConfig, ffmpegBinary string, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	if cfg.ModelPath == "" {
		return nil, apperror.InvalidInput("whisper model path is required for local transcription")
	}
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "whisper-cli"
	}
	if cfg.Language == "" {
		cfg.Language = "auto"
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &whisperCpp{executor: exec, ffmpeg: ffmpegBinary, cfg: cfg, logger: log}, nil
}

func (w *whisperCpp) Transcribe(ctx context.Context, audioPath string, mode transcript.Mode) (transcript.Segment, error) {
	if mode == transcript.ModeSpeakers {
		return transcript.Segment{}, apperror.InvalidInput("%s cannot attribute speakers", localServiceName)
	}
	startTime := time.Now()

	// Scratch files live beside the chunk so they belong to the same run.
	workDir, err := os.MkdirTemp(filepath.Dir(audioPath), "whisper-*")
	if err != nil {
		return transcript.Segment{}, fmt.Errorf("create whisper work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := w.toWAV(ctx, audioPath, wavPath); err != nil {
		return transcript.Segment{}, err
	}

	// whisper.cpp appends .txt to the output prefix
	prefix := filepath.Join(workDir, "transcript")

	// -otxt: plain text output
	// -l: force language (prevents hallucination)
	// --prompt: domain keywords to improve accuracy
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", wavPath,
		"-otxt",
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"--output-file", prefix,
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		if ctx.Err() != nil {
			return transcript.Segment{}, ctx.Err()
		}
		return transcript.Segment{}, fmt.Errorf("whisper transcribe: %w", err)
	}

	data, err := os.ReadFile(prefix + ".txt")
	if err != nil {
		return transcript.Segment{}, apperror.EmptyOutput(localServiceName, err)
	}
	text := joinLines(string(data))
	if text == "" {
		return transcript.Segment{}, apperror.EmptyOutput(localServiceName, errors.New("whisper wrote an empty transcript"))
	}

	w.logger.Debug(ctx, "Transcribed %s locally in %s", filepath.Base(audioPath), time.Since(startTime).Round(time.Millisecond))
	return transcript.PlainText(text), nil
}

// toWAV converts audio to the 16kHz mono PCM whisper.cpp expects.
// -ar 16000: 16kHz sample rate
// -ac 1: mono
// -c:a pcm_s16le: PCM 16-bit little-endian
func (w *whisperCpp) toWAV(ctx context.Context, src, dst string) error {
	args := []string{
		"-i", src,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		dst,
	}
	if _, err := w.executor.Execute(ctx, w.ffmpeg, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg convert to wav: %w", err)
	}
	return nil
}

// joinLines flattens whisper.cpp's one-segment-per-line output.
func joinLines(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
