package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

// Generate asks the model for a report built from the transcript and the
// template instructions.
func (s *implSummarizer) Generate(ctx context.Context, transcript, templateContent string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", apperror.InvalidInput("transcript is empty")
	}

	return s.run(ctx, "report", completion{
		system:    reportSystemPrompt,
		prompt:    fmt.Sprintf(reportPrompt, transcript, templateContent),
		maxTokens: s.maxTokens,
	})
}

// Review asks the model to label speakers and break the text into paragraphs.
func (s *implSummarizer) Review(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", apperror.InvalidInput("transcript is empty")
	}

	return s.run(ctx, "review", completion{
		system:      reviewSystemPrompt,
		prompt:      fmt.Sprintf(reviewPrompt, transcript),
		temperature: 0.3,
		maxTokens:   reviewMaxTokens,
	})
}

func (s *implSummarizer) run(ctx context.Context, task string, req completion) (string, error) {
	startTime := time.Now()
	s.logger.Info(ctx, "Requesting %s from %s (%d chars of input)", task, s.backend.name(), len(req.prompt))

	text, err := s.backend.complete(ctx, req)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.EmptyOutput(s.backend.name(), errors.New(task+" is empty"))
	}

	s.logger.Info(ctx, "Received %s: %d chars in %s", task, len(text), time.Since(startTime).Round(time.Millisecond))
	return text, nil
}
