package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/auth"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
	"github.com/nguyentantai21042004/audio-summarizer/internal/processor"
	"github.com/nguyentantai21042004/audio-summarizer/internal/storage"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePipeline struct {
	got processor.RemoteRequest
	loc storage.Locator
	err error
}

func (f *fakePipeline) SummarizeRemote(ctx context.Context, req processor.RemoteRequest) (storage.Locator, error) {
	f.got = req
	return f.loc, f.err
}

func newTestServer(t *testing.T, pipeline Pipeline) http.Handler {
	t.Helper()
	verifier, err := auth.New(config.AuthConfig{Method: "HS256", Secret: testSecret})
	if err != nil {
		t.Fatalf("auth.New() error = %v", err)
	}
	cfg := config.ServerConfig{FrontendURL: "http://localhost:3000", RequestTimeout: time.Minute}
	return New(cfg, pipeline, verifier, metrics.New(), logger.Nop()).Handler()
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	claims := auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func postSummarize(h http.Handler, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) summarizeResponse {
	t.Helper()
	var resp summarizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response %q is not JSON: %v", rr.Body.String(), err)
	}
	return resp
}

const validBody = `{"audio_file_locator":"gs://uploads/a/call.mp3","template_file_locator":"gs://uploads/a/t.docx"}`

func TestSummarizeSuccess(t *testing.T) {
	pipeline := &fakePipeline{loc: storage.Locator{Scheme: "gs", Bucket: "reports", Key: "reports/user-7/call.docx"}}
	h := newTestServer(t, pipeline)

	rr := postSummarize(h, validBody, signToken(t, "user-7"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rr.Code, rr.Body.String())
	}

	resp := decode(t, rr)
	if !resp.Success || resp.ReportFileLocator != "gs://reports/reports/user-7/call.docx" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Message != successMessage {
		t.Errorf("message = %q", resp.Message)
	}

	want := processor.RemoteRequest{
		AudioLocator:    "gs://uploads/a/call.mp3",
		TemplateLocator: "gs://uploads/a/t.docx",
		UserID:          "user-7",
	}
	if pipeline.got != want {
		t.Errorf("pipeline got %+v, want %+v", pipeline.got, want)
	}
	if rr.Header().Get(headerRequestID) == "" {
		t.Error("missing request id header")
	}
}

func TestSummarizeFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		token      string
		err        error
		wantStatus int
		wantPrefix string
	}{
		{
			name:       "missing token",
			body:       validBody,
			wantStatus: http.StatusUnauthorized,
			wantPrefix: "UNAUTHORIZED",
		},
		{
			name:       "bad token",
			body:       validBody,
			token:      "not-a-jwt",
			wantStatus: http.StatusUnauthorized,
			wantPrefix: "UNAUTHORIZED",
		},
		{
			name:       "missing field",
			body:       `{"audio_file_locator":"gs://b/a.mp3"}`,
			token:      "valid",
			wantStatus: http.StatusBadRequest,
			wantPrefix: "INVALID_INPUT",
		},
		{
			name:       "not found",
			body:       validBody,
			token:      "valid",
			err:        apperror.NotFound("gs://uploads/a/call.mp3", nil),
			wantStatus: http.StatusNotFound,
			wantPrefix: "NOT_FOUND",
		},
		{
			name:       "chunk failure",
			body:       validBody,
			token:      "valid",
			err:        apperror.TranscriptionFailure(2, apperror.RateLimited("speech-to-text", nil)),
			wantStatus: http.StatusBadGateway,
			wantPrefix: "TRANSCRIPTION_FAILED",
		},
		{
			name:       "timeout",
			body:       validBody,
			token:      "valid",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantPrefix: "INTERNAL_ERROR: request timed out",
		},
		{
			name:       "unclassified error",
			body:       validBody,
			token:      "valid",
			err:        errors.New("storage: save gs://b/a.mp3: open /tmp/run-abc/audio/a.mp3: no space left on device"),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: "INTERNAL_ERROR: unexpected failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &fakePipeline{err: tt.err}
			h := newTestServer(t, pipeline)

			token := tt.token
			if token == "valid" {
				token = signToken(t, "user-1")
			}
			rr := postSummarize(h, tt.body, token)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			resp := decode(t, rr)
			if resp.Success || resp.ReportFileLocator != "" {
				t.Errorf("response = %+v, want failure without locator", resp)
			}
			if !strings.HasPrefix(resp.Message, tt.wantPrefix) {
				t.Errorf("message = %q, want prefix %q", resp.Message, tt.wantPrefix)
			}
		})
	}
}

func TestFailureMessageHidesCause(t *testing.T) {
	secret := errors.New("dial tcp 10.0.0.3:443: secret internals")
	pipeline := &fakePipeline{err: apperror.ServiceUnavailable("speech-to-text", secret)}
	rr := postSummarize(newTestServer(t, pipeline), validBody, signToken(t, "u"))

	if strings.Contains(rr.Body.String(), "10.0.0.3") {
		t.Errorf("response leaks the raw cause: %s", rr.Body.String())
	}
}

func TestFailureMessageHidesUnclassifiedError(t *testing.T) {
	pipeline := &fakePipeline{err: errors.New("open /tmp/run-abc/template/t.docx: permission denied")}
	resp := decode(t, postSummarize(newTestServer(t, pipeline), validBody, signToken(t, "u")))

	if resp.Message != "INTERNAL_ERROR: unexpected failure" {
		t.Errorf("message = %q, want only the classified reason", resp.Message)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakePipeline{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Message != healthMessage {
		t.Errorf("health = %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, &fakePipeline{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("go_goroutines")) {
		t.Error("metrics output lacks the Go collector")
	}
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, &fakePipeline{})

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "http://localhost:3000", want: "http://localhost:3000"},
		{origin: "http://evil.example", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/summarize", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusNoContent {
				t.Errorf("preflight status = %d, want 204", rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunShutsDown(t *testing.T) {
	verifier, err := auth.New(config.AuthConfig{Method: "HS256", Secret: testSecret})
	if err != nil {
		t.Fatal(err)
	}
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		&fakePipeline{}, verifier, nil, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
