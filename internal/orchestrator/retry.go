package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

// withRetry runs op once, or up to MaxRetries more times while it fails with
// a retryable error.
func (o *implOrchestrator) withRetry(ctx context.Context, chunk audio.Chunk, op func() (transcript.Segment, error)) (transcript.Segment, error) {
	if o.policy.MaxRetries == 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.policy.InitialBackoff
	b.MaxInterval = o.policy.MaxBackoff

	seg, err := backoff.Retry(ctx,
		func() (transcript.Segment, error) {
			seg, err := op()
			if err != nil && !apperror.IsRetryable(err) {
				return seg, backoff.Permanent(err)
			}
			return seg, err
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(o.policy.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			o.metrics.TranscriptionRetried()
			o.logger.Warn(ctx, "Chunk %d failed (%v), retrying in %s", chunk.Index, apperror.Reason(err), wait.Round(time.Millisecond))
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	return seg, err
}
