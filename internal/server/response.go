package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/scrawl/pkg/errors"
)

// maxBodyBytes caps request bodies. Graph payloads are small; anything
// near this limit is malformed or hostile.
const maxBodyBytes = 1 << 20

// errorResponse is the JSON envelope for failed requests.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{Error: err.Error(), Code: string(code)})
}

// decodeJSON decodes a request body into v, capping the body size.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// statusFor maps library error codes onto HTTP status codes. Codes that
// indicate a bad request map to 4xx; upstream model failures map to 5xx
// so clients can distinguish their mistake from ours.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPrompt, errors.ErrCodeInvalidType,
		errors.ErrCodeInvalidStyle, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidGraph,
		errors.ErrCodeInvalidDiagram, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDiagramNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeAIKey:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork, errors.ErrCodeAIResponse:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
