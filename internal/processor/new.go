package processor

import (
	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
	"github.com/nguyentantai21042004/audio-summarizer/internal/orchestrator"
	"github.com/nguyentantai21042004/audio-summarizer/internal/speech"
	"github.com/nguyentantai21042004/audio-summarizer/internal/storage"
	"github.com/nguyentantai21042004/audio-summarizer/internal/summarizer"
)

// Deps are the collaborators of the pipeline. Transcriber, Summarizer and
// Store may be nil for commands that never reach them (split needs none).
type Deps struct {
	Prober       audio.Prober
	Splitter     audio.Splitter
	Orchestrator orchestrator.Orchestrator
	Transcriber  speech.Transcriber
	Summarizer   summarizer.Summarizer
	Store        storage.BlobStore
	Metrics      *metrics.Metrics
}

type implProcessor struct {
	cfg          *config.Config
	prober       audio.Prober
	splitter     audio.Splitter
	orchestrator orchestrator.Orchestrator
	transcriber  speech.Transcriber
	summarizer   summarizer.Summarizer
	store        storage.BlobStore
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Processor {
	return &implProcessor{
		cfg:          cfg,
		prober:       deps.Prober,
		splitter:     deps.Splitter,
		orchestrator: deps.Orchestrator,
		transcriber:  deps.Transcriber,
		summarizer:   deps.Summarizer,
		store:        deps.Store,
		metrics:      deps.Metrics,
		logger:       log,
	}
}
