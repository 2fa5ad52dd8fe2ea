package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrCompletionFailure indicates a structured-completion call failed:
	// timeout, transport error, or a response that could not be parsed into
	// the requested shape
	ErrCompletionFailure = errors.New("structured completion failed")

	// ErrDiscoveryFailure indicates no usable bid-form structure could be
	// discovered; callers degrade to the fallback schema, never surface this
	// to the user
	ErrDiscoveryFailure = errors.New("form schema discovery failed")

	// ErrExtractionFailure indicates a single vendor's row extraction failed;
	// isolated to that vendor, never aborts the batch
	ErrExtractionFailure = errors.New("vendor row extraction failed")

	// ErrScoringContract indicates the scoring collaborator omitted a
	// requested (proposal, dimension) pair; surfaced as an operation failure
	// since no safe default score exists
	ErrScoringContract = errors.New("scoring response violated contract")

	// ErrServiceUnavailable indicates a required service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrDatabaseOperation indicates a database operation failed
	ErrDatabaseOperation = errors.New("database operation failed")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCompletionFailure checks if error came from the structured-completion
// collaborator
func IsCompletionFailure(err error) bool {
	return errors.Is(err, ErrCompletionFailure)
}

// IsExtractionFailure checks if error is a per-vendor extraction failure
func IsExtractionFailure(err error) bool {
	return errors.Is(err, ErrExtractionFailure)
}

// IsScoringContract checks if error is a scoring contract violation
func IsScoringContract(err error) bool {
	return errors.Is(err, ErrScoringContract)
}
