// Package httpapi is the HTTP surface of the summarizer: a gin router with
// bearer authentication in front of the remote summarize pipeline.
package httpapi

import (
	"context"
	"net/http"

	"github.com/nguyentantai21042004/audio-summarizer/internal/processor"
	"github.com/nguyentantai21042004/audio-summarizer/internal/storage"
)

// Server serves the API until its context is cancelled.
type Server interface {
	// Run listens on the configured address and shuts down gracefully once
	// ctx is done.
	Run(ctx context.Context) error
	// Handler exposes the router, mainly for tests.
	Handler() http.Handler
}

// Pipeline is the part of the processor the API drives.
type Pipeline interface {
	SummarizeRemote(ctx context.Context, req processor.RemoteRequest) (storage.Locator, error)
}
