package generative

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the model could not be reached or refused the call.
	ErrUnavailable = errors.New("generative model unavailable")

	// ErrTimeout means the call exceeded its deadline.
	ErrTimeout = errors.New("generative model timed out")

	// ErrNoObjects means the reply held no usable JSON object.
	ErrNoObjects = errors.New("generative reply contained no objects")

	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown generative provider")

	// ErrModelsUnsupported is returned by ListModels when the provider cannot
	// enumerate its models.
	ErrModelsUnsupported = errors.New("provider does not list models")
)

// retryableError marks a failure worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

func isRetryableError(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// classify maps a transport failure onto ErrTimeout or ErrUnavailable, keeping
// the cause in the chain.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
