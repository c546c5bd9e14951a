package transcript

import (
	"strings"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

// Separator joins the text of consecutive plain segments.
const Separator = "\n\n"

// Transcript is the whole-run result. Text is set for ModePlain, Lines for
// ModeSpeakers.
type Transcript struct {
	Mode  Mode
	Text  string
	Lines []SpeakerLine
}

// Assemble joins segments, which must already be in chunk index order.
//
// Speaker lines are flattened as they are: a speaker whose paragraph runs
// across a chunk boundary ends up with two consecutive lines. See
// MergeAdjacentSpeakers.
func Assemble(segments []Segment) (Transcript, error) {
	if len(segments) == 0 {
		return Transcript{}, apperror.InvalidInput("no transcript segments to assemble")
	}

	mode := segments[0].Mode()
	for i, s := range segments[1:] {
		if s.Mode() != mode {
			return Transcript{}, apperror.InconsistentFormat(
				"segment %d is %s but segment 0 is %s", i+1, s.Mode(), mode)
		}
	}

	if mode == ModePlain {
		texts := make([]string, len(segments))
		for i, s := range segments {
			texts[i] = s.Text()
		}
		return Transcript{Mode: ModePlain, Text: strings.Join(texts, Separator)}, nil
	}

	var lines []SpeakerLine
	for _, s := range segments {
		lines = append(lines, s.Lines()...)
	}
	return Transcript{Mode: ModeSpeakers, Lines: lines}, nil
}

// MergeAdjacentSpeakers returns a copy of t where consecutive lines by the
// same speaker are joined into one paragraph. Plain transcripts are returned
// unchanged.
func MergeAdjacentSpeakers(t Transcript) Transcript {
	if t.Mode != ModeSpeakers || len(t.Lines) < 2 {
		return t
	}

	merged := make([]SpeakerLine, 0, len(t.Lines))
	for _, l := range t.Lines {
		n := len(merged)
		if n > 0 && merged[n-1].Speaker == l.Speaker {
			merged[n-1].Text = strings.TrimSpace(merged[n-1].Text) + " " + strings.TrimSpace(l.Text)
			continue
		}
		merged = append(merged, l)
	}
	return Transcript{Mode: t.Mode, Lines: merged}
}

// String renders the transcript for humans and for the report prompt. Speaker
// lines become a "[Speaker]" header followed by the paragraph, blank-line
// separated.
func (t Transcript) String() string {
	if t.Mode != ModeSpeakers {
		return t.Text
	}

	var b strings.Builder
	for i, l := range t.Lines {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString("[")
		b.WriteString(l.Speaker)
		b.WriteString("]\n")
		b.WriteString(strings.TrimSpace(l.Text))
	}
	return b.String()
}

// IsEmpty reports whether nothing was transcribed.
func (t Transcript) IsEmpty() bool {
	if t.Mode == ModeSpeakers {
		return len(t.Lines) == 0
	}
	return strings.TrimSpace(t.Text) == ""
}
