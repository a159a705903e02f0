// Package handlers implements the HTTP endpoints of the panel service.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/facetmap/pkg/errors"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError writes err with an explicit status code.
func writeError(w http.ResponseWriter, statusCode int, err error) {
	resp := ErrorResponse{Code: string(errors.GetCode(err)), Message: err.Error()}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	writeJSON(w, statusCode, resp)
}

// writeAppError maps err onto the status code of its AppError code. Server
// errors are masked.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		writeError(w, status, errors.New(errors.ErrCodeInternal, errors.DefaultMessageForCode(errors.ErrCodeInternal)))
		return
	}
	writeError(w, status, err)
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}

//Personal.AI order the ending
