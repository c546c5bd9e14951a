package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

// Transcribe runs Whisper on the file. In speakers mode the text is then
// split into speaker paragraphs by the chat model.
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath string, mode transcript.Mode) (transcript.Segment, error) {
	startTime := time.Now()
	name := filepath.Base(audioPath)

	if mode == transcript.ModeSpeakers {
		resp, err := t.whisper(ctx, audioPath, openai.AudioResponseFormatVerboseJSON)
		if err != nil {
			return transcript.Segment{}, err
		}
		text := joinSegments(resp)
		if strings.TrimSpace(text) == "" {
			return transcript.Segment{}, apperror.EmptyOutput(serviceName, errors.New("whisper returned no text"))
		}

		lines, err := t.identifySpeakers(ctx, text)
		if err != nil {
			return transcript.Segment{}, err
		}
		t.logger.Debug(ctx, "Transcribed %s into %d speaker paragraphs in %s", name, len(lines), time.Since(startTime).Round(time.Millisecond))
		return transcript.Attributed(lines), nil
	}

	resp, err := t.whisper(ctx, audioPath, openai.AudioResponseFormatText)
	if err != nil {
		return transcript.Segment{}, err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return transcript.Segment{}, apperror.EmptyOutput(serviceName, errors.New("whisper returned no text"))
	}

	t.logger.Debug(ctx, "Transcribed %s (%d chars) in %s", name, len(text), time.Since(startTime).Round(time.Millisecond))
	return transcript.PlainText(text), nil
}

func (t *implTranscriber) whisper(ctx context.Context, audioPath string, format openai.AudioResponseFormat) (openai.AudioResponse, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.transcriptionModel,
		FilePath: audioPath,
		Language: t.language,
		Format:   format,
	})
	if err != nil {
		return openai.AudioResponse{}, classify(err)
	}
	return resp, nil
}

// joinSegments puts each Whisper segment on its own line so the chat model
// sees the natural pauses.
func joinSegments(resp openai.AudioResponse) string {
	if len(resp.Segments) == 0 {
		return resp.Text
	}
	parts := make([]string, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		if txt := strings.TrimSpace(s.Text); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n")
}

type speakerResponse struct {
	Paragraphs []transcript.SpeakerLine `json:"paragraphs"`
}

func (t *implTranscriber) identifySpeakers(ctx context.Context, text string) ([]transcript.SpeakerLine, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.chatModel,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: speakerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(speakerUserPrompt, text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperror.EmptyOutput(serviceName, errors.New("speaker identification returned no choices"))
	}

	lines, err := parseSpeakerLines(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, apperror.EmptyOutput(serviceName, err)
	}
	return lines, nil
}

// parseSpeakerLines decodes the chat answer and drops blank paragraphs.
// Code fences around the JSON are tolerated.
func parseSpeakerLines(content string) ([]transcript.SpeakerLine, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out speakerResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("decode speaker paragraphs: %w", err)
	}

	lines := make([]transcript.SpeakerLine, 0, len(out.Paragraphs))
	for _, p := range out.Paragraphs {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(p.Speaker)
		if speaker == "" {
			speaker = "Speaker"
		}
		lines = append(lines, transcript.SpeakerLine{Speaker: speaker, Text: text})
	}
	if len(lines) == 0 {
		return nil, errors.New("no speaker paragraphs in response")
	}
	return lines, nil
}
