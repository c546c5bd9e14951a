package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

const bytesPerMB = 1024 * 1024

// checkExtension rejects files whose extension is not in the allowed list.
func (p *implProcessor) checkExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range p.cfg.Transcription.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return apperror.InvalidInput("unsupported audio format %q, allowed: %s",
		ext, strings.Join(p.cfg.Transcription.AllowedExtensions, ", "))
}

// validateAudio checks an input file before any external work is done.
func (p *implProcessor) validateAudio(path string) error {
	if err := p.checkExtension(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperror.NotFound(path, err)
		}
		return fmt.Errorf("stat audio: %w", err)
	}
	if info.IsDir() {
		return apperror.InvalidInput("%s is a directory", path)
	}

	limit := p.cfg.Transcription.MaxFileSizeMB
	if limit > 0 && float64(info.Size()) > limit*bytesPerMB {
		return apperror.InvalidInput("audio file is %.1f MB, the limit is %.0f MB",
			float64(info.Size())/bytesPerMB, limit)
	}
	return nil
}

// baseName strips directory and extension from path.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
