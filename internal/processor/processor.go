package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/document"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

var (
	errNoTranscriber = errors.New("speech-to-text is not configured")
	errNoSummarizer  = errors.New("text generation is not configured")
	errNoStore       = errors.New("blob storage is not configured")
)

func (p *implProcessor) Transcribe(ctx context.Context, audioPath string, mode transcript.Mode) (t transcript.Transcript, err error) {
	ctx, r, err := p.beginRun(ctx)
	if err != nil {
		return transcript.Transcript{}, err
	}
	defer func() { p.endRun(ctx, r, err) }()

	return p.transcribe(ctx, r, audioPath, mode)
}

func (p *implProcessor) Summarize(ctx context.Context, audioPath, templatePath string) (res Result, err error) {
	ctx, r, err := p.beginRun(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { p.endRun(ctx, r, err) }()

	return p.summarize(ctx, r, audioPath, templatePath)
}

// Process summarizes one local audio file and stores the report and the
// transcript under the configured output folders.
func (p *implProcessor) Process(ctx context.Context, audioPath, templatePath string) (out Outputs, err error) {
	ctx, r, err := p.beginRun(ctx)
	if err != nil {
		return Outputs{}, err
	}
	defer func() { p.endRun(ctx, r, err) }()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting audio summary: %s", audioPath)
	p.logger.Info(ctx, "Template: %s", templatePath)
	p.logger.Info(ctx, "========================================")

	res, err := p.summarize(ctx, r, audioPath, templatePath)
	if err != nil {
		return Outputs{}, err
	}

	name := baseName(audioPath)
	out = Outputs{
		ReportPath:     filepath.Join(p.cfg.Paths.Reports, name+".docx"),
		TranscriptPath: filepath.Join(p.cfg.Paths.Transcripts, name+".txt"),
	}

	if err := document.WriteReport(out.ReportPath, res.Report); err != nil {
		return Outputs{}, err
	}
	if err := writeText(out.TranscriptPath, res.Transcript.String()); err != nil {
		return Outputs{}, err
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Output report: %s", out.ReportPath)
	p.logger.Info(ctx, "Output transcript: %s", out.TranscriptPath)
	p.logger.Info(ctx, "Processing time: %s", time.Since(r.start).Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")

	return out, nil
}

// transcribe runs validate, probe, plan, split and the chunk fan-out. Chunk
// files live in the run directory and go away with it.
func (p *implProcessor) transcribe(ctx context.Context, r *run, audioPath string, mode transcript.Mode) (transcript.Transcript, error) {
	if p.transcriber == nil {
		return transcript.Transcript{}, apperror.Internal(errNoTranscriber)
	}
	if err := p.validateAudio(audioPath); err != nil {
		return transcript.Transcript{}, err
	}

	// Step 1: Probe and plan
	start := time.Now()
	asset, err := p.prober.Probe(ctx, audioPath)
	p.metrics.ObserveStage(metrics.StageProbe, start)
	if err != nil {
		return transcript.Transcript{}, err
	}

	plan, err := audio.PlanChunks(asset, p.cfg.Transcription.ChunkCeilingMB, p.cfg.Transcription.MaxChunks)
	if err != nil {
		return transcript.Transcript{}, err
	}
	p.metrics.ChunksPlanned(plan.ChunkCount)
	p.logger.Info(ctx, "Audio %s: %.2f MB, %s, %d chunk(s)",
		filepath.Base(audioPath), asset.SizeMB(), time.Duration(asset.DurationMillis)*time.Millisecond, plan.ChunkCount)

	// Step 2: Split
	start = time.Now()
	chunks, err := p.splitter.Split(ctx, asset, plan, filepath.Join(r.dir, "chunks"))
	p.metrics.ObserveStage(metrics.StageSplit, start)
	if err != nil {
		return transcript.Transcript{}, err
	}

	// Step 3: Transcribe every chunk
	t, err := p.orchestrator.Run(ctx, chunks, mode, func(ctx context.Context, c audio.Chunk) (transcript.Segment, error) {
		return p.transcriber.Transcribe(ctx, c.Path, mode)
	})
	if err != nil {
		return transcript.Transcript{}, err
	}

	if mode == transcript.ModeSpeakers && p.cfg.Transcription.MergeSpeakerTurns {
		t = transcript.MergeAdjacentSpeakers(t)
	}

	p.logger.Info(ctx, "Transcription completed: %d chunk(s), %d characters", len(chunks), len(t.String()))
	return t, nil
}

func (p *implProcessor) summarize(ctx context.Context, r *run, audioPath, templatePath string) (Result, error) {
	if p.summarizer == nil {
		return Result{}, apperror.Internal(errNoSummarizer)
	}

	// The template is read first so a bad template fails before any paid call.
	templateText, err := document.ExtractText(templatePath)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(templateText) == "" {
		return Result{}, apperror.InvalidInput("template %s has no text", filepath.Base(templatePath))
	}

	t, err := p.transcribe(ctx, r, audioPath, transcript.ParseMode(p.cfg.Transcription.Mode))
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	report, err := p.summarizer.Generate(ctx, t.String(), templateText)
	p.metrics.ObserveStage(metrics.StageGenerate, start)
	if err != nil {
		return Result{}, err
	}

	return Result{Transcript: t, Report: report}, nil
}

// Split is the standalone chunking tool. Chunks are written next to the
// source; a failed split removes the chunks it already wrote.
func (p *implProcessor) Split(ctx context.Context, audioPath string, ceilingMB float64) ([]audio.Chunk, error) {
	if err := p.checkExtension(audioPath); err != nil {
		return nil, err
	}

	asset, err := p.prober.Probe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	plan, err := audio.PlanChunks(asset, ceilingMB, p.cfg.Transcription.MaxChunks)
	if err != nil {
		return nil, err
	}
	if !plan.NeedsSplit() {
		p.logger.Info(ctx, "%s is %.2f MB, already within %.2f MB", filepath.Base(audioPath), asset.SizeMB(), ceilingMB)
	}

	chunks, err := p.splitter.Split(ctx, asset, plan, filepath.Dir(audioPath))
	if err != nil {
		p.cleanupChunks(ctx, audioPath, chunks)
		return nil, err
	}
	return chunks, nil
}

// Review writes <name>_reviewed.txt next to the transcript.
func (p *implProcessor) Review(ctx context.Context, transcriptPath string) (string, error) {
	if p.summarizer == nil {
		return "", apperror.Internal(errNoSummarizer)
	}

	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperror.NotFound(transcriptPath, err)
		}
		return "", fmt.Errorf("read transcript: %w", err)
	}

	p.logger.Info(ctx, "Reviewing transcript: %s (%d characters)", transcriptPath, len(data))

	reviewed, err := p.summarizer.Review(ctx, string(data))
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(filepath.Dir(transcriptPath), baseName(transcriptPath)+"_reviewed.txt")
	if err := writeText(outPath, reviewed); err != nil {
		return "", err
	}

	p.logger.Info(ctx, "Reviewed transcript saved: %s", outPath)
	return outPath, nil
}

func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
