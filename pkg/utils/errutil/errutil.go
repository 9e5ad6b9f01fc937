package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/jobs"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
)

// StatusCode maps an error to the HTTP status reported to clients
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrAgentNotFound),
		errors.Is(err, usecase.ErrChatNotFound),
		errors.Is(err, usecase.ErrDocumentNotFound),
		errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrJobExists):
		return http.StatusConflict
	case model.IsTransient(err), errors.Is(err, usecase.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Handle logs err with msg. Server side failures are also sent to Sentry.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}
	logError(ctx, err, msg, StatusCode(err))
}

// HandleHTTP logs err and writes a JSON error response with the mapped status.
// Messages of 5xx responses are not exposed to the client.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	status := StatusCode(err)
	logError(ctx, err, "HTTP error", status)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func logError(ctx context.Context, err error, msg string, status int) {
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		if status >= http.StatusInternalServerError {
			logger.Error(msg,
				"status", status,
				"error", err.Error(),
				"values", ge.Values(),
				"stack", ge.Stacks(),
			)
		} else {
			logger.Warn(msg,
				"status", status,
				"error", err.Error(),
				"values", ge.Values(),
			)
		}
	} else if status >= http.StatusInternalServerError {
		logger.Error(msg, "status", status, "error", err.Error())
	} else {
		logger.Warn(msg, "status", status, "error", err.Error())
	}

	if status >= http.StatusInternalServerError {
		report(err, ge, msg)
	}
}

// report sends err to Sentry. It is a no-op when Sentry was not initialized.
func report(err error, ge *goerr.Error, msg string) {
	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if ge != nil {
			values := sentry.Context{}
			for k, v := range ge.Values() {
				values[k] = v
			}
			scope.SetContext("goerr", values)
		}
		hub.CaptureException(err)
	})
}
