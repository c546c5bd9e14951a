package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/auth"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/httpapi"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
	"github.com/nguyentantai21042004/audio-summarizer/internal/orchestrator"
	"github.com/nguyentantai21042004/audio-summarizer/internal/processor"
	"github.com/nguyentantai21042004/audio-summarizer/internal/speech"
	"github.com/nguyentantai21042004/audio-summarizer/internal/storage"
	"github.com/nguyentantai21042004/audio-summarizer/internal/summarizer"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
	"github.com/nguyentantai21042004/audio-summarizer/internal/watcher"
	"github.com/nguyentantai21042004/audio-summarizer/pkg/executor"
)

type app struct {
	cfg *config.Config
	log logger.Logger
}

// needs lists the hosted collaborators a command talks to.
type needs struct {
	transcriber bool
	summarizer  bool
	store       bool
}

func (a *app) processor(ctx context.Context, n needs, m *metrics.Metrics) (processor.Processor, error) {
	if n.transcriber || n.summarizer {
		if err := a.cfg.RequireCredentials(); err != nil {
			return nil, apperror.InvalidInput("%v", err)
		}
	}

	exec := executor.New()
	deps := processor.Deps{
		Prober: audio.NewProber(exec, a.cfg.FFmpeg.ProbePath),
		Splitter: audio.NewSplitter(exec, audio.SplitterOptions{
			Binary:  a.cfg.FFmpeg.BinaryPath,
			Codec:   a.cfg.FFmpeg.AudioCodec,
			Bitrate: a.cfg.FFmpeg.AudioBitrate,
		}, a.log),
		Orchestrator: orchestrator.New(orchestrator.PolicyFromConfig(a.cfg.Transcription), a.log, m),
		Metrics:      m,
	}

	var err error
	if n.transcriber {
		if deps.Transcriber, err = speech.New(a.cfg, exec, a.log); err != nil {
			return nil, err
		}
	}
	if n.summarizer {
		if deps.Summarizer, err = summarizer.New(a.cfg, a.log); err != nil {
			return nil, err
		}
	}
	if n.store {
		if deps.Store, err = storage.New(ctx, a.cfg.Storage); err != nil {
			return nil, err
		}
	}

	return processor.New(a.cfg, deps, a.log), nil
}

func (a *app) summarize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	audioName := fs.String("a", "", "audio file (name under paths.audio or a path)")
	templateName := fs.String("t", a.cfg.Paths.DefaultTemplate, "report template .docx (name under paths.templates or a path)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *audioName == "" {
		fs.Usage()
		return apperror.InvalidInput("-a is required")
	}

	proc, err := a.processor(ctx, needs{transcriber: true, summarizer: true}, nil)
	if err != nil {
		return err
	}

	out, err := proc.Process(ctx,
		resolve(a.cfg.Paths.Audio, *audioName),
		resolve(a.cfg.Paths.Templates, *templateName))
	if err != nil {
		return err
	}

	fmt.Printf("Report: %s\nTranscript: %s\n", out.ReportPath, out.TranscriptPath)
	return nil
}

func (a *app) transcribe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transcribe", flag.ContinueOnError)
	speakers := fs.Bool("speakers", a.cfg.Transcription.Mode == config.ModeSpeakers, "attribute paragraphs to speakers")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperror.InvalidInput("transcribe takes exactly one audio file")
	}

	mode := transcript.ModePlain
	if *speakers {
		mode = transcript.ModeSpeakers
	}

	proc, err := a.processor(ctx, needs{transcriber: true}, nil)
	if err != nil {
		return err
	}

	audioPath := resolve(a.cfg.Paths.Audio, fs.Arg(0))
	t, err := proc.Transcribe(ctx, audioPath, mode)
	if err != nil {
		return err
	}

	outPath := filepath.Join(a.cfg.Paths.Transcripts, baseName(audioPath)+".txt")
	if err := os.MkdirAll(a.cfg.Paths.Transcripts, 0755); err != nil {
		return fmt.Errorf("create transcripts dir: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(t.String()), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	fmt.Printf("Transcript: %s\n", outPath)
	return nil
}

func (a *app) split(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return apperror.InvalidInput("split takes an audio file and a chunk size in MB")
	}
	ceilingMB, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return apperror.InvalidInput("chunk size %q is not a number", fs.Arg(1))
	}

	proc, err := a.processor(ctx, needs{}, nil)
	if err != nil {
		return err
	}

	chunks, err := proc.Split(ctx, resolve(a.cfg.Paths.Audio, fs.Arg(0)), ceilingMB)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		fmt.Println(c.Path)
	}
	return nil
}

func (a *app) review(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	name := fs.String("t", "", "transcript file (name under paths.transcripts or a path)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *name == "" {
		fs.Usage()
		return apperror.InvalidInput("-t is required")
	}

	proc, err := a.processor(ctx, needs{summarizer: true}, nil)
	if err != nil {
		return err
	}

	out, err := proc.Review(ctx, resolve(a.cfg.Paths.Transcripts, *name))
	if err != nil {
		return err
	}
	fmt.Printf("Reviewed transcript: %s\n", out)
	return nil
}

func (a *app) watch(ctx context.Context) error {
	if err := ensureDirectories(a.cfg); err != nil {
		return err
	}

	proc, err := a.processor(ctx, needs{transcriber: true, summarizer: true}, nil)
	if err != nil {
		return err
	}

	templatePath := resolve(a.cfg.Paths.Templates, a.cfg.Paths.DefaultTemplate)
	handler := func(ctx context.Context, audioPath string) error {
		_, err := proc.Process(ctx, audioPath, templatePath)
		return err
	}

	// Create watcher with processor as handler and concurrency control
	w, err := watcher.New(a.cfg.Paths.Inbox, handler, a.log, watcher.Options{
		Extensions:    a.cfg.Transcription.AllowedExtensions,
		MaxConcurrent: a.cfg.Performance.MaxConcurrent,
		SettleDelay:   500 * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Audio Summarizer is watching %s", a.cfg.Paths.Inbox)
	a.log.Info(ctx, "Reports: %s", a.cfg.Paths.Reports)
	a.log.Info(ctx, "Transcripts: %s", a.cfg.Paths.Transcripts)
	a.log.Info(ctx, "Concurrent: %d files at once", a.cfg.Performance.MaxConcurrent)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.RequireServer(); err != nil {
		return apperror.InvalidInput("%v", err)
	}
	if a.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := os.MkdirAll(a.cfg.Paths.Temp, 0755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	m := metrics.New()
	proc, err := a.processor(ctx, needs{transcriber: true, summarizer: true, store: true}, m)
	if err != nil {
		return err
	}
	verifier, err := auth.New(a.cfg.Auth)
	if err != nil {
		return err
	}

	return httpapi.New(a.cfg.Server, proc, verifier, m, a.log).Run(ctx)
}

// parseFlags reports bad flags as invalid input; flag itself has already
// printed the details.
func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return apperror.InvalidInput("%s: %v", fs.Name(), err)
}

// resolve treats a bare name as relative to dir, the way the data folders
// are laid out; anything that already exists or carries a directory is
// used as given.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) || filepath.Base(name) != name {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(dir, name)
}

func baseName(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Inbox,
		cfg.Paths.Reports,
		cfg.Paths.Transcripts,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
