// Package errors provides common error types for the contacts extractor.
//
// This package defines sentinel errors for conditions that several packages
// need to agree on, plus a classified ExtractError used to report per-file
// failures. Using typed errors enables consistent handling with errors.Is().
//
// Usage:
//
//	import pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
//
//	// Return a domain error
//	return fmt.Errorf("input %s: %w", path, pferrors.ErrNotFound)
//
//	// Check for domain errors
//	if pferrors.IsNotFound(err) {
//	    // handle missing input
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the requested input was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or configuration.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrTooLarge indicates a document exceeds the configured size limit.
	ErrTooLarge = errors.New("content too large")

	// ErrTagger indicates the entity tagger failed on a document.
	ErrTagger = errors.New("tagger failed")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsTooLarge reports whether any error in err's chain is ErrTooLarge.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}

// IsTagger reports whether any error in err's chain is ErrTagger.
func IsTagger(err error) bool {
	return errors.Is(err, ErrTagger)
}
