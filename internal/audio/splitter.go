package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/pkg/executor"
)

// Splitter cuts an Asset into the chunks described by a Plan.
type Splitter interface {
	// Split writes chunk files into outDir and returns them in index order.
	// Chunk files already written are left in place on failure; removing
	// them is the caller's job.
	Split(ctx context.Context, asset Asset, plan Plan, outDir string) ([]Chunk, error)
}

// SplitterOptions configures the ffmpeg export of each chunk.
type SplitterOptions struct {
	Binary  string
	Codec   string
	Bitrate string
}

type ffmpegSplitter struct {
	executor executor.Executor
	opts     SplitterOptions
	logger   logger.Logger
}

// NewSplitter creates a Splitter that exports chunks with ffmpeg.
func NewSplitter(exec executor.Executor, opts SplitterOptions, log logger.Logger) Splitter {
	if opts.Binary == "" {
		opts.Binary = "ffmpeg"
	}
	if opts.Codec == "" {
		opts.Codec = "libmp3lame"
	}
	if opts.Bitrate == "" {
		opts.Bitrate = "128k"
	}
	return &ffmpegSplitter{executor: exec, opts: opts, logger: log}
}

func (s *ffmpegSplitter) Split(ctx context.Context, asset Asset, plan Plan, outDir string) ([]Chunk, error) {
	if plan.ChunkCount < 1 {
		return nil, apperror.InvalidInput("chunk count must be at least 1, got %d", plan.ChunkCount)
	}

	// A single chunk is the source file itself.
	if !plan.NeedsSplit() {
		return []Chunk{{Index: 0, StartMillis: 0, EndMillis: asset.DurationMillis, Path: asset.Path}}, nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(asset.Path), filepath.Ext(asset.Path))
	spans := Boundaries(asset.DurationMillis, plan)
	chunks := make([]Chunk, 0, len(spans))

	s.logger.Info(ctx, "Splitting %s (%.2f MB, %dms) into %d chunks", asset.Path, asset.SizeMB(), asset.DurationMillis, len(spans))

	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}

		path := filepath.Join(outDir, ChunkFileName(base, i, len(spans)))
		if err := s.export(ctx, asset.Path, span, path); err != nil {
			if ctx.Err() != nil {
				return chunks, ctx.Err()
			}
			return chunks, apperror.Encoding(i, err)
		}

		chunks = append(chunks, Chunk{Index: i, StartMillis: span.StartMillis, EndMillis: span.EndMillis, Path: path})

		if info, err := os.Stat(path); err == nil {
			s.logger.Info(ctx, "Created chunk %d/%d: %s (%.2f MB)", i+1, len(spans), filepath.Base(path), float64(info.Size())/bytesPerMB)
		}
	}

	return chunks, nil
}

// export re-encodes one span of src into dst.
// -ss/-t after -i: accurate (decoding) seek, so spans line up to the millisecond
// -vn: drop embedded cover art
func (s *ffmpegSplitter) export(ctx context.Context, src string, span Span, dst string) error {
	args := []string{
		"-y",
		"-i", src,
		"-ss", formatSeconds(span.StartMillis),
		"-t", formatSeconds(span.DurationMillis()),
		"-vn",
		"-c:a", s.opts.Codec,
		"-b:a", s.opts.Bitrate,
		dst,
	}

	if _, err := s.executor.Execute(ctx, s.opts.Binary, args...); err != nil {
		return fmt.Errorf("ffmpeg export %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// ChunkFileName names chunk index of count as <base>_partNN.mp3. The ordinal
// is one-based and zero-padded so that lexical order equals chunk order.
func ChunkFileName(base string, index, count int) string {
	width := len(strconv.Itoa(count))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%s_part%0*d.%s", base, width, index+1, Encoding)
}

func formatSeconds(millis int64) string {
	return fmt.Sprintf("%d.%03d", millis/1000, millis%1000)
}
