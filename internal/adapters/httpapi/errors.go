package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/snu-hive/hostel-desk-api/internal/app/identity"
	"github.com/snu-hive/hostel-desk-api/internal/app/requests"
)

type errorEnvelope struct {
	Message   string         `json:"message"`
	Code      string         `json:"code"`
	Errors    map[string]any `json:"errors,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	env := errorEnvelope{
		Message: message,
		Code:    code,
		Errors:  details,
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		env.RequestID = rid
	}
	writeJSON(w, status, env)
}

// writeAppError maps application-layer errors onto the response envelope.
// Anything that is not an application error becomes an opaque 500; internals
// never leak to clients.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var identityErr *identity.Error
	if errors.As(err, &identityErr) {
		writeError(w, r, identityErr.Status, identityErr.Code, identityErr.Message, identityErr.Details)
		return
	}
	var requestsErr *requests.Error
	if errors.As(err, &requestsErr) {
		writeError(w, r, requestsErr.Status, requestsErr.Code, requestsErr.Message, requestsErr.Details)
		return
	}
	log.Printf("httpapi: unhandled error on %s %s (requestId=%s): %v", r.Method, r.URL.Path, middleware.GetReqID(r.Context()), err)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return false
	}
	return true
}
