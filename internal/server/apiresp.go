package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorPayload describes a failed request.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries request metadata.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
}

// Envelope wraps every JSON response.
type Envelope struct {
	OK    bool          `json:"ok"`
	Data  any           `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
	Meta  Meta          `json:"meta"`
}

func writeOK(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, r, status, Envelope{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeEnvelope(w, r, status, Envelope{
		Error: &ErrorPayload{Code: codeFromStatus(status), Message: msg},
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	env.Meta.RequestID = middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusUnprocessableEntity:
		return "unprocessable_entity"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusBadGateway:
		return "upstream_error"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusGatewayTimeout:
		return "timeout"
	default:
		if status >= 200 && status < 300 {
			return ""
		}
		return "error"
	}
}
