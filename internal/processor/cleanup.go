package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
)

// run owns the scratch directory of one pipeline invocation.
type run struct {
	id    string
	dir   string
	start time.Time
}

// beginRun tags ctx with a run id (unless the caller already did) and
// creates a scratch directory unique to this run.
func (p *implProcessor) beginRun(ctx context.Context) (context.Context, *run, error) {
	id := uuid.NewString()
	if logger.RunID(ctx) == "" {
		ctx = logger.WithRunID(ctx, id)
	}

	dir := filepath.Join(p.cfg.Paths.Temp, "run-"+id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ctx, nil, apperror.Internal(fmt.Errorf("create run dir: %w", err))
	}
	p.logger.Debug(ctx, "Run directory: %s", dir)

	return ctx, &run{id: id, dir: dir, start: time.Now()}, nil
}

// endRun removes the scratch directory and records the outcome. It runs on
// success, failure and cancellation alike.
func (p *implProcessor) endRun(ctx context.Context, r *run, err error) {
	p.cleanupDir(ctx, r.dir)
	p.metrics.RunFinished(err)

	if err != nil {
		p.logger.Error(ctx, "Run failed after %s: %s", time.Since(r.start).Round(time.Millisecond), apperror.Reason(err))
	}
}

// cleanupDir removes a directory tree, logs warning if fails
func (p *implProcessor) cleanupDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup run dir %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up run dir: %s", dir)
	}
}

// cleanupChunks removes chunk files left behind by a failed standalone split.
// The source file itself is never touched.
func (p *implProcessor) cleanupChunks(ctx context.Context, source string, chunks []audio.Chunk) {
	for _, c := range chunks {
		if c.Path == source {
			continue
		}
		if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn(ctx, "Failed to cleanup chunk %s: %v", c.Path, err)
		}
	}
}
