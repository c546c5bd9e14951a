// Package orchestrator drives one transcription call per audio chunk and
// assembles the results in chunk order.
package orchestrator

import (
	"context"

	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

// TranscribeFunc transcribes a single chunk. It must honour ctx.
type TranscribeFunc func(ctx context.Context, chunk audio.Chunk) (transcript.Segment, error)

// Orchestrator runs TranscribeFunc over a chunk set.
type Orchestrator interface {
	// Run returns the assembled transcript or the failure of the lowest
	// failing chunk index. A failed run never yields a partial transcript.
	Run(ctx context.Context, chunks []audio.Chunk, mode transcript.Mode, fn TranscribeFunc) (transcript.Transcript, error)
}
