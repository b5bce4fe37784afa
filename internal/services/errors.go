package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrContentMismatch = errors.New("content mismatch")
	ErrExternalService = errors.New("external service error")
	ErrConversion      = errors.New("conversion error")
	ErrDownload        = errors.New("download error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
)

var markers = []error{
	ErrContentMismatch,
	ErrExternalService,
	ErrConversion,
	ErrDownload,
	ErrValidation,
	ErrConfiguration,
	ErrNotFound,
	ErrTimeout,
}

// ServiceError is the error type produced by Wrap.
type ServiceError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Marker, detail, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Marker, detail)
}

func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExternalService
	}
	return &ServiceError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// ErrorDetails is the user-facing breakdown of an error.
type ErrorDetails struct {
	Category  string `json:"category"`
	Stage     string `json:"stage,omitempty"`
	Operation string `json:"operation,omitempty"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
}

// Details extracts the outermost ServiceError context from err. Errors that
// were never wrapped report their full text as the message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{
		Category: Category(err),
		Message:  err.Error(),
		Hint:     Hint(err),
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		details.Stage = svcErr.Stage
		details.Operation = svcErr.Operation
		if svcErr.Message != "" {
			details.Message = svcErr.Message
		}
		if svcErr.Err != nil {
			details.Message = strings.TrimPrefix(details.Message+": "+svcErr.Err.Error(), ": ")
		}
	}
	return details
}

// Marker returns the sentinel the error was tagged with, or nil. When errors
// are wrapped more than once the outermost tag wins.
func Marker(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Marker
	}
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

// Category maps an error to a short stable label used in run records and
// command output.
func Category(err error) string {
	switch Marker(err) {
	case ErrContentMismatch:
		return "content_mismatch"
	case ErrExternalService:
		return "external_service"
	case ErrConversion:
		return "conversion"
	case ErrDownload:
		return "download"
	case ErrValidation:
		return "validation"
	case ErrConfiguration:
		return "configuration"
	case ErrNotFound:
		return "not_found"
	case ErrTimeout:
		return "timeout"
	}
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "unknown"
}

// Hint returns an operator-facing remediation hint for the error category.
func Hint(err error) string {
	switch Marker(err) {
	case ErrContentMismatch:
		return "video does not look like a PC build; rerun with --skip-validation to force"
	case ErrConfiguration:
		return "run pcsteps config validate"
	case ErrDownload:
		return "check yt-dlp is installed and the URL is reachable"
	case ErrExternalService:
		return "check the indexing service API key and quota"
	case ErrTimeout:
		return "raise polling.timeout_seconds or retry later"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
