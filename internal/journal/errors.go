package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperengineering/carelog/internal/store"
)

// ErrTimeout is returned when a collaborator does not answer in time.
var ErrTimeout = errors.New("external service timed out")

// Empty results that the operations treat as missing data.
var (
	ErrNoElders        = fmt.Errorf("no elders: %w", store.ErrNotFound)
	ErrNoStudiedGuides = fmt.Errorf("no studied guides in week: %w", store.ErrNotFound)
	ErrNoAnswers       = fmt.Errorf("no answers for requested questions: %w", store.ErrNotFound)
)

// ExternalServiceError reports a failed collaborator call.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// call runs fn under the service timeout and classifies its failure.
// Cancellation by the caller is passed through untouched.
func call[T any](ctx context.Context, s *Service, service string, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := fn(cctx)
	if err == nil {
		return v, nil
	}

	var zero T
	switch {
	case ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded):
		return zero, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded):
		return zero, fmt.Errorf("%s: %w", service, ErrTimeout)
	default:
		return zero, &ExternalServiceError{Service: service, Err: err}
	}
}
