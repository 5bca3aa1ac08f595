package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"sampahkita/pkg/errors"
)

// StatusFor maps a service error to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidInput), errors.Is(err, errors.ErrUnsupportedYear):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrArtifactLoad),
		errors.Is(err, errors.ErrDataLoad),
		errors.Is(err, errors.ErrGeometryLoad),
		errors.Is(err, errors.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// messageFor is the client-facing text of err; internal failures are not detailed
func messageFor(status int, err error) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "load failure: " + err.Error()
	case http.StatusInternalServerError:
		return http.StatusText(status)
	}
	return err.Error()
}

// codeFor is a stable machine-readable error code for err
func codeFor(status int, err error) string {
	var domainErr *errors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	switch {
	case errors.Is(err, errors.ErrUnsupportedYear):
		return "unsupported_year"
	case errors.Is(err, errors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, errors.ErrNotFound):
		return "not_found"
	case status == http.StatusServiceUnavailable:
		return "load_failure"
	case status == http.StatusGatewayTimeout:
		return "timeout"
	}
	return "internal"
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status int    `json:"status"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	h.logError(r, status, err)
	writeJSON(w, status, errorBody{
		Error:  messageFor(status, err),
		Code:   codeFor(status, err),
		Status: status,
	})
}

func (h *Handler) logError(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Errorw("Request failed", "path", r.URL.Path, "status", status, "error", err)
		return
	}
	h.log.Debugw("Request rejected", "path", r.URL.Path, "status", status, "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
