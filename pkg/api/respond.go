package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/auth"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string  `json:"error"`
	Field     string  `json:"field,omitempty"`
	Committed []int64 `json:"committed,omitempty"`
	Pending   []int64 `json:"pending,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the engagement error taxonomy onto HTTP statuses
func statusFor(err error) int {
	var validation *engagement.ValidationError
	var batch *engagement.BatchError
	var remote *engagement.RemoteError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, engagement.ErrConfirmationRequired):
		return http.StatusBadRequest
	case errors.Is(err, engagement.ErrAuthenticationRequired), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, engagement.ErrNotRegistered),
		errors.Is(err, engagement.ErrNotAssignee),
		errors.Is(err, profile.ErrStepLocked):
		return http.StatusForbidden
	case errors.As(err, &batch),
		errors.Is(err, engagement.ErrTaskAlreadyAssigned),
		errors.Is(err, engagement.ErrTaskNotAssigned),
		errors.Is(err, engagement.ErrRegistrationClosed):
		return http.StatusConflict
	case errors.As(err, &remote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it as a JSON error. Internal errors are not echoed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var validation *engagement.ValidationError
	if errors.As(err, &validation) {
		resp.Field = validation.Field
	}
	var batch *engagement.BatchError
	if errors.As(err, &batch) {
		resp.Committed = batch.Committed
		resp.Pending = batch.Pending
	}

	switch {
	case status >= http.StatusInternalServerError:
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
		if status == http.StatusInternalServerError {
			resp.Error = http.StatusText(status)
		}
	default:
		s.logger.Debug("Request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return engagement.Invalid("body", "invalid JSON: %v", err)
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, engagement.Invalid(name, "invalid id %q", raw)
	}
	return id, nil
}

func errorMessages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{fmt.Sprint(err)}
}
