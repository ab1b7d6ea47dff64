package graphql

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/abgdnv/gocommerce-analytics/internal/errors"
)

const (
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL"
)

// Error is a resolver error rendered with extensions.code.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// toError maps a service error to the client-facing error. Causes other than invalid input are logged, not returned.
func toError(ctx context.Context, logger *slog.Logger, op string, err error) *Error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return &Error{Message: err.Error(), Code: CodeInvalidArgument}
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		logger.ErrorContext(ctx, "Data store unavailable", "operation", op, "error", err)
		return &Error{Message: apperrors.ErrUpstreamUnavailable.Error(), Code: CodeUpstreamUnavailable}
	default:
		logger.ErrorContext(ctx, "Unexpected error", "operation", op, "error", err)
		return &Error{Message: "internal error", Code: CodeInternal}
	}
}
