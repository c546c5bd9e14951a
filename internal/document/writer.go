package document

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/audio-summarizer/internal/transcript"
)

const (
	fontName  = "Calibri"
	fontSize  = 11
	fontColor = "000000"

	ReportTitle   = "Audio Transcription Report"
	ReportHeading = "Analysis Report"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*\+]\s+(.+)$`)
)

// WriteReport saves reportText as a .docx at path. The generated text is
// markdown; headings, bullets and bold spans are rendered as Word styling.
func WriteReport(path, reportText string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), ReportTitle, true, 20)
	addStyledRun(doc.AddParagraph(""), ReportHeading, true, 16)

	for _, line := range strings.Split(reportText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}
		addRichText(doc.AddParagraph(""), trimmed)
	}

	return save(doc, path)
}

// WriteTranscript saves t as a .docx at path. Speaker transcripts get a bold
// speaker line above each paragraph.
func WriteTranscript(path, title string, t transcript.Transcript) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)

	if t.Mode == transcript.ModeSpeakers {
		for _, l := range t.Lines {
			addStyledRun(doc.AddParagraph(""), l.Speaker, true, fontSize)
			addPlainRun(doc.AddParagraph(""), strings.TrimSpace(l.Text))
		}
		return save(doc, path)
	}

	for _, para := range strings.Split(t.Text, transcript.Separator) {
		if para = strings.TrimSpace(para); para != "" {
			addPlainRun(doc.AddParagraph(""), para)
		}
	}
	return save(doc, path)
}

func save(doc *docx.RootDoc, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 13
	default:
		return 12
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color(fontColor)
	if bold {
		run.Bold(true)
	}
}

func addPlainRun(p *docx.Paragraph, text string) {
	p.AddText(text).Font(fontName).Size(fontSize).Color(fontColor)
}

// addRichText renders **bold** spans as bold runs.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			addPlainRun(p, cleanMarkdownInline(part))
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color(fontColor).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
