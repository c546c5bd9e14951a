package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/processor"
)

const (
	healthMessage  = "Audio Summarizer API is running"
	successMessage = "Audio summarization completed successfully"
)

type summarizeRequest struct {
	AudioFileLocator    string `json:"audio_file_locator" binding:"required"`
	TemplateFileLocator string `json:"template_file_locator" binding:"required"`
}

type summarizeResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ReportFileLocator string `json:"report_file_locator,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func failure(err error) summarizeResponse {
	return summarizeResponse{Success: false, Message: apperror.Reason(apperror.Classify(err))}
}

func (s *implServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "healthy", Message: healthMessage})
}

func (s *implServer) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure(apperror.Wrap(apperror.CodeInvalidInput, "invalid request body", err)))
		return
	}

	ctx := c.Request.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	loc, err := s.pipeline.SummarizeRemote(ctx, processor.RemoteRequest{
		AudioLocator:    req.AudioFileLocator,
		TemplateLocator: req.TemplateFileLocator,
		UserID:          c.GetString(keyUserID),
	})
	if err != nil {
		status := apperror.HTTPStatus(err)
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
			if apperror.CodeOf(err) == apperror.CodeInternal {
				err = apperror.New(apperror.CodeInternal, "request timed out")
			}
		}
		c.JSON(status, failure(err))
		return
	}

	c.JSON(http.StatusOK, summarizeResponse{
		Success:           true,
		Message:           successMessage,
		ReportFileLocator: loc.String(),
	})
}
