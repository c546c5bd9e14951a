package audio

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
)

func TestChunkFileNameSortsByIndex(t *testing.T) {
	for _, count := range []int{2, 9, 10, 99, 100, 150} {
		names := make([]string, count)
		for i := range names {
			names[i] = ChunkFileName("lecture", i, count)
		}

		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		for i := range names {
			if sorted[i] != names[i] {
				t.Fatalf("count=%d: lexical order differs at %d: %s vs %s", count, i, sorted[i], names[i])
			}
		}
	}

	if got := ChunkFileName("talk", 0, 3); got != "talk_part01.mp3" {
		t.Errorf("ChunkFileName() = %q, want talk_part01.mp3", got)
	}
	if got := ChunkFileName("talk", 99, 100); got != "talk_part100.mp3" {
		t.Errorf("ChunkFileName() = %q, want talk_part100.mp3", got)
	}
}

func TestSplitSingleChunkKeepsOriginal(t *testing.T) {
	exec := newFakeExecutor()
	s := NewSplitter(exec, SplitterOptions{}, logger.Nop())

	asset := Asset{Path: "/data/audio/short.mp3", ByteSize: mb, DurationMillis: 60_000}
	chunks, err := s.Split(context.Background(), asset, Plan{ChunkCount: 1, ChunkDurationMillis: 60_000}, t.TempDir())
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	want := Chunk{Index: 0, StartMillis: 0, EndMillis: 60_000, Path: asset.Path}
	if chunks[0] != want {
		t.Errorf("chunk = %+v, want %+v", chunks[0], want)
	}
	if len(exec.calls) != 0 {
		t.Errorf("expected no ffmpeg calls, got %d", len(exec.calls))
	}
}

func TestSplitExportsOrderedChunks(t *testing.T) {
	exec := newFakeExecutor()
	s := NewSplitter(exec, SplitterOptions{Bitrate: "96k"}, logger.Nop())
	outDir := filepath.Join(t.TempDir(), "chunks")

	asset := Asset{Path: "/data/audio/meeting.wav", ByteSize: 60 * mb, DurationMillis: 10_001}
	plan, err := PlanChunks(asset, 25, DefaultMaxChunks)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := s.Split(context.Background(), asset, plan, outDir)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	wantNames := []string{"meeting_part01.mp3", "meeting_part02.mp3", "meeting_part03.mp3"}
	wantStart := []string{"0.000", "3.333", "6.666"}
	wantDur := []string{"3.333", "3.333", "3.335"}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if filepath.Base(c.Path) != wantNames[i] {
			t.Errorf("chunk %d path = %s, want %s", i, c.Path, wantNames[i])
		}
		if _, err := os.Stat(c.Path); err != nil {
			t.Errorf("chunk %d not written: %v", i, err)
		}

		args := exec.calls[i][1:]
		if got := argAfter(args, "-ss"); got != wantStart[i] {
			t.Errorf("chunk %d -ss = %s, want %s", i, got, wantStart[i])
		}
		if got := argAfter(args, "-t"); got != wantDur[i] {
			t.Errorf("chunk %d -t = %s, want %s", i, got, wantDur[i])
		}
		if got := argAfter(args, "-b:a"); got != "96k" {
			t.Errorf("chunk %d -b:a = %s, want 96k", i, got)
		}
	}
	if chunks[2].EndMillis != asset.DurationMillis {
		t.Errorf("last chunk ends at %d, want %d", chunks[2].EndMillis, asset.DurationMillis)
	}
}

func TestSplitEncodingFailureNamesChunk(t *testing.T) {
	exec := newFakeExecutor()
	exec.failAt = 2
	s := NewSplitter(exec, SplitterOptions{}, logger.Nop())
	outDir := t.TempDir()

	asset := Asset{Path: "/data/audio/long.mp3", ByteSize: 100 * mb, DurationMillis: 400_000}
	chunks, err := s.Split(context.Background(), asset, Plan{ChunkCount: 4, ChunkDurationMillis: 100_000}, outDir)
	if err == nil {
		t.Fatal("Split() should fail")
	}
	if got := apperror.CodeOf(err); got != apperror.CodeEncoding {
		t.Fatalf("code = %s, want %s", got, apperror.CodeEncoding)
	}
	if idx, ok := apperror.ChunkIndexOf(err); !ok || idx != 2 {
		t.Errorf("ChunkIndexOf() = %d, %v, want 2", idx, ok)
	}

	// Already-written chunks are left for the caller to clean up.
	if len(chunks) != 2 {
		t.Fatalf("returned %d chunks, want 2", len(chunks))
	}
	for _, c := range chunks {
		if _, err := os.Stat(c.Path); err != nil {
			t.Errorf("chunk %s was removed: %v", c.Path, err)
		}
	}
}

func TestSplitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSplitter(newFakeExecutor(), SplitterOptions{}, logger.Nop())
	asset := Asset{Path: "/data/audio/long.mp3", ByteSize: 60 * mb, DurationMillis: 60_000}
	_, err := s.Split(ctx, asset, Plan{ChunkCount: 3, ChunkDurationMillis: 20_000}, t.TempDir())
	if err != context.Canceled {
		t.Errorf("Split() error = %v, want context.Canceled", err)
	}
}
