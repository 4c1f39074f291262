package errors

import (
	"context"
	"errors"
	"log/slog"
)

// Exit codes reported by the command line front end.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// Report is the user-facing description of a failed run.
type Report struct {
	Type     ErrorType `json:"type"`
	Path     string    `json:"path,omitempty"`
	Reason   string    `json:"reason"`
	ExitCode int       `json:"exit_code"`
}

// Describe converts any error into a Report.
func Describe(err error) Report {
	if err == nil {
		return Report{ExitCode: ExitOK}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Report{Reason: err.Error(), ExitCode: ExitCancelled}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		rep := Report{
			Type:     appErr.Type,
			Path:     appErr.Path(),
			Reason:   err.Error(),
			ExitCode: ExitFailure,
		}
		if appErr.Type == ErrTypeConfig || appErr.Type == ErrTypeValidation {
			rep.ExitCode = ExitUsage
		}
		return rep
	}

	return Report{Reason: err.Error(), ExitCode: ExitFailure}
}

// ErrorHandler logs failed runs and decides the process exit code
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// Handle logs err with its failing path and reason and returns the exit code.
func (h *ErrorHandler) Handle(ctx context.Context, err error) int {
	rep := Describe(err)
	if rep.ExitCode == ExitOK {
		return ExitOK
	}

	attrs := []any{
		slog.String("error", rep.Reason),
		slog.Int("exit_code", rep.ExitCode),
	}
	if rep.Type != "" {
		attrs = append(attrs, slog.String("error_type", string(rep.Type)))
	}
	if rep.Path != "" {
		attrs = append(attrs, slog.String("path", rep.Path))
	}
	h.logger.ErrorContext(ctx, "run failed", attrs...)
	return rep.ExitCode
}
