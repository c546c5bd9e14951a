package orchestrator

import (
	"time"

	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
	"github.com/nguyentantai21042004/audio-summarizer/internal/metrics"
)

// MaxConcurrentLimit caps in-flight calls regardless of configuration.
const MaxConcurrentLimit = 5

// Policy controls concurrency and retries.
//
// MaxRetries is the number of extra attempts for a chunk whose failure is
// retryable (rate limited or service unavailable). Zero aborts the run on
// the first failure.
type Policy struct {
	MaxConcurrent  int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// PolicyFromConfig reads the transcription section of cfg.
func PolicyFromConfig(cfg config.TranscriptionConfig) Policy {
	return Policy{
		MaxConcurrent:  cfg.MaxConcurrent,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.RetryInitialBackoff,
		MaxBackoff:     cfg.RetryMaxBackoff,
	}
}

type implOrchestrator struct {
	policy  Policy
	logger  logger.Logger
	metrics *metrics.Metrics
}

// New creates an Orchestrator. m may be nil.
func New(policy Policy, log logger.Logger, m *metrics.Metrics) Orchestrator {
	if policy.MaxConcurrent <= 0 {
		policy.MaxConcurrent = 1
	}
	if policy.MaxConcurrent > MaxConcurrentLimit {
		policy.MaxConcurrent = MaxConcurrentLimit
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = time.Second
	}
	if policy.MaxBackoff < policy.InitialBackoff {
		policy.MaxBackoff = policy.InitialBackoff
	}
	return &implOrchestrator{policy: policy, logger: log, metrics: m}
}
