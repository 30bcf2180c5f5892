package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"orangefrog/internal/lifecycle"
	"orangefrog/internal/security"
	"orangefrog/internal/service"
	"orangefrog/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps a service error onto a status code
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		return
	}

	status, userMsg := statusFor(err)
	if status >= http.StatusInternalServerError {
		respondWithError(w, status, userMsg, logMsg, err)
		return
	}
	// Client errors carry the domain message
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, security.ErrInvalidToken):
		return http.StatusBadRequest, security.ErrInvalidToken.Error()
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound, ErrNotFound
	case errors.Is(err, lifecycle.ErrInvalidContractor):
		return http.StatusUnprocessableEntity, ErrUnprocessable
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrConflictingWrite),
		errors.Is(err, service.ErrContractorExists):
		return http.StatusConflict, ErrConflict
	case errors.Is(err, lifecycle.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ErrServiceUnavailable
	}
	return http.StatusInternalServerError, ErrInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidJSON})
		return false
	}
	return true
}
