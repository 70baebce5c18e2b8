package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is:
//   - Logged with full technical details and the request ID (server-side)
//   - Returned to the client as a user-friendly message with an action
//
// The "detail" field carries the message the frontend displays; "code" is the
// support reference from core.MapError.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/hsclassify/internal/core"
	"github.com/JonMunkholm/hsclassify/internal/logging"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errBodyTooLarge   = errors.New("request too large")
	errRateLimited    = errors.New("rate limit exceeded")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyQuestion),
		errors.Is(err, core.ErrInvalidFileType),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrEmptyWorkbook),
		errors.Is(err, core.ErrUnreadableFile),
		errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge),
		errors.Is(err, core.ErrTooManyRows),
		errors.Is(err, errBodyTooLarge),
		errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrOracleUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, core.ErrTooManyBatches):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message with a status
// derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorJSON(w, r, err, statusFor(err))
}

// respondErrorJSON logs err and writes it as an ErrorResponse with statusCode.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Detail: msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// decodeJSON reads a JSON body into v and validates its struct tags.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return fmt.Errorf("%w: %w", errBodyTooLarge, err)
		}
		return fmt.Errorf("%w body: %w", errInvalidRequest, err)
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", errInvalidRequest, e.Namespace(), e.Tag())
		}
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}
