package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/audio-summarizer/internal/auth"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
)

type implServer struct {
	cfg      config.ServerConfig
	pipeline Pipeline
	verifier auth.Verifier
	metrics  *metrics.Metrics
	logger   logger.Logger
	engine   *gin.Engine
}

// New builds the router. m may be nil, in which case /metrics answers 404.
func New(cfg config.ServerConfig, pipeline Pipeline, verifier auth.Verifier, m *metrics.Metrics, log logger.Logger) Server {
	s := &implServer{
		cfg:      cfg,
		pipeline: pipeline,
		verifier: verifier,
		metrics:  m,
		logger:   log,
	}
	s.engine = s.routes()
	return s
}

func (s *implServer) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(s.recovery(), s.requestID(), s.requestLogger(), s.cors())

	api := engine.Group("/api")
	api.GET("/health", s.health)
	api.POST("/summarize", s.authenticate(), s.summarize)

	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return engine
}

func (s *implServer) Handler() http.Handler {
	return s.engine
}
