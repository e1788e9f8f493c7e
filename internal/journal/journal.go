// Package journal implements the caregiving workflows on top of the store
// and the AI collaborators: weekly tasks, weekly reports, record assembly,
// and the question, answer and guide operations around them.
package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/carelog/internal/artifact"
	"github.com/hyperengineering/carelog/internal/assistant"
	"github.com/hyperengineering/carelog/internal/embedding"
	"github.com/hyperengineering/carelog/internal/store"
	"github.com/hyperengineering/carelog/internal/types"
	"github.com/hyperengineering/carelog/internal/weekly"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultConcurrency = 4

	// keywordLimit is the most keywords a record keeps.
	keywordLimit = 5
)

// Deps holds the collaborators of a Service.
type Deps struct {
	Store       store.Store
	Embedder    embedding.Embedder
	Writer      assistant.Writer
	Illustrator assistant.Illustrator
	Transcriber assistant.Transcriber
	Speaker     assistant.Speaker
	Artifacts   artifact.Storage

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Timeout bounds every collaborator call.
	Timeout time.Duration
	// Concurrency bounds parallel embedding calls while building a report.
	Concurrency int
	// MaxKeywords caps the keywords kept per record. Values outside 1..5
	// fall back to 5.
	MaxKeywords int
	Logger      *slog.Logger
}

// Service exposes the journal operations.
type Service struct {
	store       store.Store
	embedder    embedding.Embedder
	writer      assistant.Writer
	illustrator assistant.Illustrator
	transcriber assistant.Transcriber
	speaker     assistant.Speaker
	artifacts   artifact.Storage

	now         func() time.Time
	timeout     time.Duration
	concurrency int
	maxKeywords int
	logger      *slog.Logger
}

// New creates a Service. Zero-valued tuning fields fall back to defaults.
func New(d Deps) *Service {
	s := &Service{
		store:       d.Store,
		embedder:    d.Embedder,
		writer:      d.Writer,
		illustrator: d.Illustrator,
		transcriber: d.Transcriber,
		speaker:     d.Speaker,
		artifacts:   d.Artifacts,
		now:         d.Clock,
		timeout:     d.Timeout,
		concurrency: d.Concurrency,
		maxKeywords: d.MaxKeywords,
		logger:      d.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.concurrency < 1 {
		s.concurrency = defaultConcurrency
	}
	if s.maxKeywords < 1 || s.maxKeywords > keywordLimit {
		s.maxKeywords = keywordLimit
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "journal")
	return s
}

// EmbeddingModel names the model used for report similarity.
func (s *Service) EmbeddingModel() string {
	return s.embedder.ModelName()
}

// Stats returns entity counts.
func (s *Service) Stats(ctx context.Context) (*types.Stats, error) {
	return s.store.Stats(ctx)
}

// today returns the service clock's date as YYYY-MM-DD.
func (s *Service) today() string {
	return s.now().UTC().Format(weekly.DateLayout)
}
