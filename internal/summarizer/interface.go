package summarizer

import "context"

// Summarizer produces text from a transcript with a hosted language model.
type Summarizer interface {
	// Generate writes a report for transcript following the instructions in
	// templateContent.
	Generate(ctx context.Context, transcript, templateContent string) (string, error)
	// Review rewrites a plain transcript into "Speaker X:" paragraphs.
	Review(ctx context.Context, transcript string) (string, error)
}

// completion is one system + user prompt round trip.
type completion struct {
	system      string
	prompt      string
	temperature float32
	maxTokens   int
}

// backend is a hosted text-generation API.
type backend interface {
	complete(ctx context.Context, req completion) (string, error)
	name() string
}
