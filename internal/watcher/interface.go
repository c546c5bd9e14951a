package watcher

import "context"

// Watcher monitors an inbox folder and hands new audio files to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one settled audio file from the inbox.
type EventHandler func(ctx context.Context, filePath string) error
