package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
	"github.com/nguyentantai21042004/audio-summarizer/internal/orchestrator"
	"github.com/nguyentantai21042004/audio-summarizer/internal/storage"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

// fakeProber reports the real file size and a fixed one minute duration.
type fakeProber struct {
	calls int
}

func (p *fakeProber) Probe(ctx context.Context, path string) (audio.Asset, error) {
	p.calls++
	info, err := os.Stat(path)
	if err != nil {
		return audio.Asset{}, apperror.NotFound(path, err)
	}
	return audio.Asset{Path: path, ByteSize: info.Size(), DurationMillis: 60000, Encoding: "mp3"}, nil
}

// fakeSplitter writes empty chunk files. failAt is the chunk index whose
// export fails, -1 for never.
type fakeSplitter struct {
	failAt int
}

func (s *fakeSplitter) Split(ctx context.Context, asset audio.Asset, plan audio.Plan, outDir string) ([]audio.Chunk, error) {
	if !plan.NeedsSplit() {
		return []audio.Chunk{{Index: 0, EndMillis: asset.DurationMillis, Path: asset.Path}}, nil
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	base := baseName(asset.Path)
	var chunks []audio.Chunk
	for i, span := range audio.Boundaries(asset.DurationMillis, plan) {
		if i == s.failAt {
			return chunks, apperror.Encoding(i, errors.New("ffmpeg exited 1"))
		}
		path := filepath.Join(outDir, audio.ChunkFileName(base, i, plan.ChunkCount))
		if err := os.WriteFile(path, []byte("chunk"), 0644); err != nil {
			return chunks, err
		}
		chunks = append(chunks, audio.Chunk{Index: i, StartMillis: span.StartMillis, EndMillis: span.EndMillis, Path: path})
	}
	return chunks, nil
}

// fakeTranscriber answers per chunk file name.
type fakeTranscriber struct {
	mu       sync.Mutex
	calls    int
	failOn   string
	speakers map[string][]transcript.SpeakerLine
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string, mode transcript.Mode) (transcript.Segment, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	name := filepath.Base(audioPath)
	if f.failOn != "" && name == f.failOn {
		return transcript.Segment{}, apperror.ServiceUnavailable("speech-to-text", errors.New("503"))
	}
	if mode == transcript.ModeSpeakers {
		return transcript.Attributed(f.speakers[name]), nil
	}
	return transcript.PlainText("text of " + name), nil
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSummarizer struct {
	report     string
	reviewed   string
	err        error
	transcript string
	template   string
}

func (f *fakeSummarizer) Generate(ctx context.Context, transcript, templateContent string) (string, error) {
	f.transcript = transcript
	f.template = templateContent
	return f.report, f.err
}

func (f *fakeSummarizer) Review(ctx context.Context, transcript string) (string, error) {
	f.transcript = transcript
	return f.reviewed, f.err
}

type fixture struct {
	cfg         *config.Config
	proc        Processor
	prober      *fakeProber
	splitter    *fakeSplitter
	transcriber *fakeTranscriber
	summarizer  *fakeSummarizer
	store       storage.BlobStore
	storeRoot   string
	metrics     *metrics.Metrics
}

func newFixture(t *testing.T, tweak func(*config.Config)) *fixture {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Paths: config.PathsConfig{
			Audio:       filepath.Join(dir, "audio"),
			Templates:   filepath.Join(dir, "templates"),
			Reports:     filepath.Join(dir, "reports"),
			Transcripts: filepath.Join(dir, "transcripts"),
			Temp:        filepath.Join(dir, "temp"),
		},
		Storage: config.StorageConfig{Provider: config.StorageLocal},
	}
	if tweak != nil {
		tweak(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	f := &fixture{
		cfg:         cfg,
		prober:      &fakeProber{},
		splitter:    &fakeSplitter{failAt: -1},
		transcriber: &fakeTranscriber{},
		summarizer:  &fakeSummarizer{report: "# Findings\nAll good", reviewed: "Speaker 1: hello"},
		storeRoot:   filepath.Join(dir, "bucket-root"),
		metrics:     metrics.New(),
	}
	f.store = storage.NewLocal(f.storeRoot, "gs", "reports-bucket")

	orch := orchestrator.New(orchestrator.PolicyFromConfig(cfg.Transcription), logger.Nop(), f.metrics)
	f.proc = New(cfg, Deps{
		Prober:       f.prober,
		Splitter:     f.splitter,
		Orchestrator: orch,
		Transcriber:  f.transcriber,
		Summarizer:   f.summarizer,
		Store:        f.store,
		Metrics:      f.metrics,
	}, logger.Nop())
	return f
}

// writeAudio creates a file of size bytes under the audio folder.
func (f *fixture) writeAudio(t *testing.T, name string, size int) string {
	t.Helper()
	if err := os.MkdirAll(f.cfg.Paths.Audio, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(f.cfg.Paths.Audio, name)
	if err := os.WriteFile(path, []byte(strings.Repeat("a", size)), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// assertTempEmpty checks that no run directory survived.
func (f *fixture) assertTempEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.cfg.Paths.Temp)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir has %d leftover entries, want 0", len(entries))
	}
}
