package audio

import (
	"context"
	"errors"
	"os"
	"sync"
)

// fakeExecutor records invocations and, for ffmpeg, writes the output file
// named by the last argument.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	stdout  string
	failAt  int // zero-based ffmpeg call index to fail, -1 for never
	ffmpegN int
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{failAt: -1}
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string{name}, args...))

	if name != "ffmpeg" {
		return f.stdout, nil
	}

	n := f.ffmpegN
	f.ffmpegN++
	if n == f.failAt {
		return "", errors.New("exit status 1")
	}

	dst := args[len(args)-1]
	if err := os.WriteFile(dst, []byte("mp3"), 0o644); err != nil {
		return "", err
	}
	return "", nil
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
