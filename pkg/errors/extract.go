package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorCode represents a classified extraction error.
type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeRead             ErrorCode = "read_error"
	ErrCodePermission       ErrorCode = "permission_denied"
	ErrCodeContentTooLarge  ErrorCode = "content_too_large"
	ErrCodeTagger           ErrorCode = "tagger_error"
	ErrCodeWrite            ErrorCode = "write_error"
	ErrCodeTimeout          ErrorCode = "timeout"
	ErrCodeContextCancelled ErrorCode = "context_cancelled"
	ErrCodeProcessing       ErrorCode = "processing_error"
)

// Stages at which an extraction can fail.
const (
	StageDiscover = "discover"
	StageRead     = "read"
	StageExtract  = "extract"
	StageWrite    = "write"
)

// ExtractError is a structured error for a failed document or run step.
type ExtractError struct {
	Code    ErrorCode
	Stage   string
	File    string
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Code, e.Stage, e.File, e.Message)
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// ClassifyError inspects an error and returns an *ExtractError with the
// appropriate code. Errors that are already classified keep their code.
// Unknown errors become ErrCodeProcessing.
func ClassifyError(err error, stage, file string) *ExtractError {
	if err == nil {
		return nil
	}

	var existing *ExtractError
	if errors.As(err, &existing) {
		return existing
	}

	ee := &ExtractError{
		Stage:   stage,
		File:    file,
		Message: err.Error(),
		Cause:   err,
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ee.Code = ErrCodeTimeout
		ee.Message = "operation timed out"
	case errors.Is(err, context.Canceled):
		ee.Code = ErrCodeContextCancelled
		ee.Message = "operation cancelled"
	case errors.Is(err, ErrTooLarge):
		ee.Code = ErrCodeContentTooLarge
	case errors.Is(err, ErrTagger):
		ee.Code = ErrCodeTagger
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, ErrNotFound):
		ee.Code = ErrCodeNotFound
	case errors.Is(err, fs.ErrPermission):
		ee.Code = ErrCodePermission
	default:
		ee.Code = classifyByStage(stage, err)
	}
	return ee
}

// classifyByStage falls back to the stage and message when no sentinel matched.
func classifyByStage(stage string, err error) ErrorCode {
	lower := strings.ToLower(err.Error())
	switch {
	case stage == StageWrite:
		return ErrCodeWrite
	case stage == StageRead, strings.Contains(lower, "reading"), strings.Contains(lower, "i/o"):
		return ErrCodeRead
	default:
		return ErrCodeProcessing
	}
}

// CodeOf returns the code of a classified error, or "" for anything else.
func CodeOf(err error) ErrorCode {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}
