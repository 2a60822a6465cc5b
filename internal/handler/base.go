// Package handler exposes the quote engine over HTTP: query parsing,
// validation errors as fiber errors, and JSON responses.
package handler

import "log/slog"

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}
