package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/classline/live-api/internal/errors"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteDomainError renders a service-layer error, mapping the broker's error
// taxonomy onto HTTP statuses. Unknown errors become opaque 500s so internal
// detail never leaks to clients.
func WriteDomainError(w http.ResponseWriter, err error) {
	code, status := classify(err)

	var appErr *apperrors.AppError
	message := http.StatusText(status)
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	WriteJSON(w, status, map[string]string{"error": code, "message": message})
}

func classify(err error) (string, int) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeUnauthenticated:
		return "unauthenticated", http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return "forbidden", http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return "not_found", http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return "conflict", http.StatusConflict
	case apperrors.ErrCodeValidation:
		return "validation", http.StatusBadRequest
	case apperrors.ErrCodeUpstream:
		return "upstream", http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		return "timeout", http.StatusGatewayTimeout
	default:
		return "internal", http.StatusInternalServerError
	}
}
