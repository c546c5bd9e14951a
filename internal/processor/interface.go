package processor

import (
	"context"

	"github.com/nguyentantai21042004/audio-summarizer/internal/audio"
	"github.com/nguyentantai21042004/audio-summarizer/internal/storage"
	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

// Processor runs the audio summarizer pipeline end to end.
type Processor interface {
	// Transcribe chunks the audio file, transcribes every chunk and returns
	// the assembled transcript.
	Transcribe(ctx context.Context, audioPath string, mode transcript.Mode) (transcript.Transcript, error)
	// Summarize transcribes audioPath and generates a report shaped by the
	// .docx template at templatePath.
	Summarize(ctx context.Context, audioPath, templatePath string) (Result, error)
	// Process runs Summarize and writes the report and transcript into the
	// configured output folders.
	Process(ctx context.Context, audioPath, templatePath string) (Outputs, error)
	// SummarizeRemote is Summarize for files held in blob storage. The report
	// is uploaded under the user's folder and its locator returned.
	SummarizeRemote(ctx context.Context, req RemoteRequest) (storage.Locator, error)
	// Split cuts audioPath into chunks of at most ceilingMB next to the source.
	Split(ctx context.Context, audioPath string, ceilingMB float64) ([]audio.Chunk, error)
	// Review reformats a plain transcript file into speaker paragraphs and
	// returns the path of the reviewed file.
	Review(ctx context.Context, transcriptPath string) (string, error)
}

// Result is the outcome of Summarize.
type Result struct {
	Transcript transcript.Transcript
	Report     string
}

// Outputs are the files written by Process.
type Outputs struct {
	ReportPath     string
	TranscriptPath string
}

// RemoteRequest names the blob storage inputs of SummarizeRemote.
type RemoteRequest struct {
	AudioLocator    string
	TemplateLocator string
	UserID          string
}
