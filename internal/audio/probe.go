package audio

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/pkg/executor"
)

// Prober loads an Asset's size and duration from disk.
type Prober interface {
	Probe(ctx context.Context, path string) (Asset, error)
}

type ffprobe struct {
	executor executor.Executor
	binary   string
}

// NewProber creates a Prober backed by ffprobe.
func NewProber(exec executor.Executor, binary string) Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &ffprobe{executor: exec, binary: binary}
}

// Probe stats the file and asks ffprobe for the container duration.
func (p *ffprobe) Probe(ctx context.Context, path string) (Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Asset{}, apperror.NotFound(path, err)
		}
		return Asset{}, fmt.Errorf("stat audio: %w", err)
	}
	if info.IsDir() {
		return Asset{}, apperror.InvalidInput("%s is a directory", path)
	}

	// -show_entries format=duration prints the duration in seconds, e.g. "123.456000"
	out, err := p.executor.Execute(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return Asset{}, apperror.Wrap(apperror.CodeAssetIntegrity, "probe audio duration", err)
	}

	millis, err := parseDurationMillis(out)
	if err != nil {
		return Asset{}, apperror.Wrap(apperror.CodeAssetIntegrity, "probe audio duration", err)
	}

	return Asset{
		Path:           path,
		ByteSize:       info.Size(),
		DurationMillis: millis,
		Encoding:       strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}, nil
}

func parseDurationMillis(out string) (int64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	// Some containers report several streams; the first line is the format duration.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return int64(math.Round(secs * 1000)), nil
}
