package processor

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/document"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
	"github.com/nguyentantai21042004/audio-summarizer/internal/storage"
)

// reportsPrefix is the bucket folder holding per-user reports.
const reportsPrefix = "reports"

func (p *implProcessor) SummarizeRemote(ctx context.Context, req RemoteRequest) (loc storage.Locator, err error) {
	// Callers outside the process only ever see a classified reason.
	defer func() { err = apperror.Classify(err) }()

	ctx, r, err := p.beginRun(ctx)
	if err != nil {
		return storage.Locator{}, err
	}
	defer func() { p.endRun(ctx, r, err) }()

	if p.store == nil {
		return storage.Locator{}, apperror.Internal(errNoStore)
	}
	if err := checkUserID(req.UserID); err != nil {
		return storage.Locator{}, err
	}

	audioLoc, err := storage.ParseLocator(req.AudioLocator)
	if err != nil {
		return storage.Locator{}, err
	}
	templateLoc, err := storage.ParseLocator(req.TemplateLocator)
	if err != nil {
		return storage.Locator{}, err
	}
	// Checked before the download so a wrong file type costs nothing.
	if err := p.checkExtension(audioLoc.Name()); err != nil {
		return storage.Locator{}, err
	}

	p.logger.Info(ctx, "Remote summary for user %s: audio=%s template=%s", req.UserID, audioLoc, templateLoc)

	audioPath, err := p.store.Download(ctx, audioLoc, filepath.Join(r.dir, "audio", audioLoc.Name()))
	if err != nil {
		return storage.Locator{}, err
	}
	templatePath, err := p.store.Download(ctx, templateLoc, filepath.Join(r.dir, "template", templateLoc.Name()))
	if err != nil {
		return storage.Locator{}, err
	}

	res, err := p.summarize(ctx, r, audioPath, templatePath)
	if err != nil {
		return storage.Locator{}, err
	}

	name := baseName(audioLoc.Name()) + ".docx"
	reportPath := filepath.Join(r.dir, "output", name)
	if err := document.WriteReport(reportPath, res.Report); err != nil {
		return storage.Locator{}, err
	}

	start := time.Now()
	loc, err = p.store.Upload(ctx, reportPath, path.Join(reportsPrefix, req.UserID, name))
	p.metrics.ObserveStage(metrics.StageUpload, start)
	if err != nil {
		return storage.Locator{}, err
	}

	p.logger.Info(ctx, "Report uploaded: %s (%s)", loc, time.Since(r.start).Round(time.Millisecond))
	return loc, nil
}

// checkUserID keeps the id usable as a single key segment under reports/.
func checkUserID(id string) error {
	if id == "" {
		return apperror.InvalidInput("user id is required")
	}
	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return apperror.InvalidInput("user id %q is not a valid key segment", id)
	}
	return nil
}
