// Package speech transcribes audio files with a hosted speech-to-text model.
package speech

import (
	"context"

	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

// Transcriber turns one local audio file into a transcript segment of the
// requested mode.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, mode transcript.Mode) (transcript.Segment, error)
}
