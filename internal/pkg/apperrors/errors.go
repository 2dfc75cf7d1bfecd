package apperrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies pipeline errors. Classification decides retry behaviour,
// HTTP status mapping and the user-facing message.
type Kind string

const (
	KindInsufficientData    Kind = "insufficient_data"
	KindEmbeddingError      Kind = "embedding_error"
	KindRateLimited         Kind = "rate_limited"
	KindCircuitOpen         Kind = "circuit_open"
	KindCostLimitExceeded   Kind = "cost_limit_exceeded"
	KindUpstreamTimeout     Kind = "upstream_timeout"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindCancelled           Kind = "cancelled"
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from any error, classifying foreign errors along
// the way. Context deadline errors are upstream timeouts: the worker treats
// them exactly like a 5xx.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUpstreamTimeout
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether the worker's backoff loop should retry the
// stage. Terminal classifications (cost cap, insufficient data, validation,
// cancellation) never retry.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindCircuitOpen, KindUpstreamTimeout, KindInternal:
		return true
	default:
		return false
	}
}

// UserMessage returns the actionable user-facing message for a terminal
// error kind.
func UserMessage(kind Kind) string {
	switch kind {
	case KindInsufficientData:
		return "Not enough answers to generate a codeframe. Collect more responses and try again."
	case KindEmbeddingError:
		return "Some answers could not be embedded and were skipped."
	case KindRateLimited:
		return "The AI provider is receiving too many requests. Please retry shortly."
	case KindCircuitOpen:
		return "The AI provider is temporarily unavailable. The system will recover automatically."
	case KindCostLimitExceeded:
		return "Generation stopped: the cost limit for this job was reached. Raise the limit or reduce the batch."
	case KindUpstreamTimeout:
		return "The AI provider took too long to respond. The job will be retried."
	case KindUpstreamUnavailable:
		return "The AI provider is unreachable. Check provider configuration and try again."
	case KindCancelled:
		return "Generation was cancelled."
	case KindValidation:
		return "The request contains invalid parameters."
	case KindNotFound:
		return "The requested resource was not found."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// HTTPStatus maps an error kind to the API status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInsufficientData, KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	case KindCircuitOpen, KindUpstreamUnavailable:
		return fiber.StatusServiceUnavailable
	case KindUpstreamTimeout:
		return fiber.StatusGatewayTimeout
	case KindCostLimitExceeded:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}
