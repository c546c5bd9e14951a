package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

func (o *implOrchestrator) Run(ctx context.Context, chunks []audio.Chunk, mode transcript.Mode, fn TranscribeFunc) (transcript.Transcript, error) {
	if len(chunks) == 0 {
		return transcript.Transcript{}, apperror.InvalidInput("no audio chunks to transcribe")
	}
	for i, c := range chunks {
		if c.Index != i {
			return transcript.Transcript{}, apperror.InvalidInput("chunk at position %d has index %d", i, c.Index)
		}
	}

	start := time.Now()
	defer o.metrics.ObserveStage(metrics.StageTranscribe, start)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		segments = make([]transcript.Segment, len(chunks))
		errs     = make([]error, len(chunks))
		done     = make([]bool, len(chunks))
		sem      = newSemaphore(o.policy.MaxConcurrent)
	)

	o.logger.Info(ctx, "Transcribing %d chunk(s), up to %d in flight", len(chunks), o.policy.MaxConcurrent)

	for _, chunk := range chunks {
		if err := sem.acquire(runCtx); err != nil {
			break
		}

		wg.Add(1)
		go func(chunk audio.Chunk) {
			defer wg.Done()
			defer sem.release()

			seg, err := o.transcribeChunk(runCtx, chunk, mode, fn)
			if err != nil {
				errs[chunk.Index] = err
				// Stop the other chunks; the run is lost.
				cancel()
				return
			}
			segments[chunk.Index] = seg
			done[chunk.Index] = true
		}(chunk)
	}
	wg.Wait()

	if err := firstFailure(errs); err != nil {
		o.logger.Error(ctx, "Transcription failed: %v", err)
		return transcript.Transcript{}, err
	}
	if err := ctx.Err(); err != nil {
		return transcript.Transcript{}, err
	}
	for i := range done {
		if !done[i] {
			return transcript.Transcript{}, apperror.TranscriptionFailure(i, errors.New("chunk was not transcribed"))
		}
	}

	result, err := transcript.Assemble(segments)
	if err != nil {
		return transcript.Transcript{}, err
	}

	o.logger.Info(ctx, "Transcribed %d chunk(s) in %s", len(chunks), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// transcribeChunk calls fn for one chunk, applying the retry policy, and
// checks the shape of what comes back. Errors caused by cancellation are
// returned as the bare context error.
func (o *implOrchestrator) transcribeChunk(ctx context.Context, chunk audio.Chunk, mode transcript.Mode, fn TranscribeFunc) (transcript.Segment, error) {
	o.logger.Debug(ctx, "Transcribing chunk %d (%dms-%dms)", chunk.Index, chunk.StartMillis, chunk.EndMillis)

	seg, err := o.withRetry(ctx, chunk, func() (transcript.Segment, error) {
		seg, err := fn(ctx, chunk)
		o.metrics.ChunkTranscribed(err)
		return seg, err
	})

	// A response that raced with cancellation is discarded.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return transcript.Segment{}, ctxErr
	}
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeEmptyOutput {
			ae, _ := apperror.As(err)
			return transcript.Segment{}, ae.WithChunk(chunk.Index)
		}
		return transcript.Segment{}, apperror.TranscriptionFailure(chunk.Index, err)
	}

	if seg.Mode() != mode {
		return transcript.Segment{}, apperror.InconsistentFormat(
			"chunk %d answered in %s mode, run requested %s", chunk.Index, seg.Mode(), mode).WithChunk(chunk.Index)
	}
	if seg.IsEmpty() {
		return transcript.Segment{}, apperror.EmptyOutput("speech-to-text", nil).WithChunk(chunk.Index)
	}
	return seg, nil
}

// firstFailure returns the failure with the lowest chunk index, ignoring
// chunks that were only cancelled because another chunk failed first.
func firstFailure(errs []error) error {
	var cancelled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if cancelled == nil {
				cancelled = err
			}
			continue
		}
		return err
	}
	return cancelled
}
