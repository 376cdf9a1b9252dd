package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")

	// Branch-scoped retrieval failures. In hybrid mode a single failed
	// branch is recovered; both failing is fatal for the request.
	ErrQuantitativeRetrieval = errors.New("quantitative retrieval failure")
	ErrQualitativeRetrieval  = errors.New("qualitative retrieval failure")

	// ErrSynthesis is fatal for the request: without the model no answer
	// can be produced. Surfaced to the caller as retryable.
	ErrSynthesis = errors.New("synthesis failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
