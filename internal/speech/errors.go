package speech

import (
	"context"
	"errors"
	"io/fs"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

// classify maps a go-openai error onto the pipeline error codes.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		return apperror.NotFound("audio chunk", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apperror.FromHTTPStatus(serviceName, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return apperror.FromHTTPStatus(serviceName, reqErr.HTTPStatusCode, err)
	}

	// No status: the request never got an answer.
	return apperror.ServiceUnavailable(serviceName, err)
}
