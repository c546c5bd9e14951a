// Package document reads report templates and writes reports and
// transcripts as Word documents.
package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

const documentPart = "word/document.xml"

// ExtractText returns the text of every non-blank body paragraph of the .docx
// at path, newline-joined. Paragraphs inside tables are skipped.
func ExtractText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperror.NotFound(path, err)
		}
		return "", apperror.Wrap(apperror.CodeInvalidInput, "template is not a .docx file", err)
	}
	defer zr.Close()

	f, err := zr.Open(documentPart)
	if err != nil {
		return "", apperror.Wrap(apperror.CodeInvalidInput, "template has no document body", err)
	}
	defer f.Close()

	paragraphs, err := bodyParagraphs(f)
	if err != nil {
		return "", apperror.Wrap(apperror.CodeInvalidInput, "read template body", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// bodyParagraphs walks WordprocessingML and collects w:p elements that are
// direct children of w:body.
func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inBodyPara bool
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body" {
				inBodyPara = true
				current.Reset()
			}
			if inBodyPara {
				switch name {
				case "t":
					inText = true
				case "tab":
					current.WriteByte('\t')
				case "br", "cr":
					current.WriteByte('\n')
				}
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inBodyPara && len(stack) > 0 && stack[len(stack)-1] == "body" {
					if text := current.String(); strings.TrimSpace(text) != "" {
						paragraphs = append(paragraphs, text)
					}
					inBodyPara = false
				}
			}

		case xml.CharData:
			if inBodyPara && inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
