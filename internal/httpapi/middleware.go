package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/auth"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
)

const (
	headerRequestID = "X-Request-Id"
	keyUserID       = "user_id"
)

// requestID tags the request context so pipeline logs carry the same id as
// the response header.
func (s *implServer) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(logger.WithRunID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *implServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		line := "%s %s -> %d (%s)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond)}
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, line, args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, line, args...)
		default:
			s.logger.Info(ctx, line, args...)
		}
	}
}

func (s *implServer) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error(c.Request.Context(), "Panic recovered on %s: %v", c.Request.URL.Path, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, failure(apperror.Internal(fmt.Errorf("panic: %v", r))))
			}
		}()
		c.Next()
	}
}

// cors allows the configured frontend origin and answers preflight requests.
func (s *implServer) cors() gin.HandlerFunc {
	allowed := strings.TrimRight(s.cfg.FrontendURL, "/")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed == "*" || origin == allowed) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+headerRequestID)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authenticate verifies the bearer token and stores the user id.
func (s *implServer) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var userID string
			if userID, err = s.verifier.Verify(token); err == nil {
				c.Set(keyUserID, userID)
				c.Next()
				return
			}
		}

		s.logger.Warn(c.Request.Context(), "Rejected request: %s", apperror.Reason(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, failure(err))
	}
}
