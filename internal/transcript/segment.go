// Package transcript holds per-chunk transcription results and joins them
// into one ordered transcript.
package transcript

import "strings"

// Mode is the shape a run asks the speech service to answer in. It is fixed
// for the whole run.
type Mode string

const (
	ModePlain    Mode = "plain"
	ModeSpeakers Mode = "speakers"
)

// ParseMode maps a config or flag value to a Mode. Unknown values fall back
// to ModePlain.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeSpeakers {
		return ModeSpeakers
	}
	return ModePlain
}

// SpeakerLine is one speaker-labelled paragraph.
type SpeakerLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"paragraph"`
}

// Segment is the transcription of a single chunk: either plain text or a
// list of speaker lines. Build one with PlainText or Attributed.
type Segment struct {
	mode  Mode
	text  string
	lines []SpeakerLine
}

// PlainText wraps a plain transcription.
func PlainText(text string) Segment {
	return Segment{mode: ModePlain, text: text}
}

// Attributed wraps a speaker-attributed transcription.
func Attributed(lines []SpeakerLine) Segment {
	return Segment{mode: ModeSpeakers, lines: append([]SpeakerLine(nil), lines...)}
}

func (s Segment) Mode() Mode { return s.mode }

func (s Segment) Text() string { return s.text }

func (s Segment) Lines() []SpeakerLine { return s.lines }

// IsEmpty reports whether the segment carries no transcribed speech. Lines
// whose text is blank do not count.
func (s Segment) IsEmpty() bool {
	switch s.mode {
	case ModeSpeakers:
		for _, l := range s.lines {
			if strings.TrimSpace(l.Text) != "" {
				return false
			}
		}
		return true
	default:
		return strings.TrimSpace(s.text) == ""
	}
}
