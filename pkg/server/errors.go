package server

import (
	"encoding/json"
	"errors"
	"net/http"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code  lperrors.Code `json:"code"`
	Error string        `json:"error"`
}

// statusOf maps an error code to an HTTP status.
func statusOf(code lperrors.Code) int {
	switch code {
	case lperrors.ErrCodeInvalidInput, lperrors.ErrCodeInvalidSchema,
		lperrors.ErrCodeInvalidTarget, lperrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case lperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case lperrors.ErrCodeResourceExhausted:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := lperrors.GetCode(err)
	msg := lperrors.UserMessage(err)
	if code == "" {
		code = lperrors.ErrCodeInternal
		msg = "internal error"
	}
	status := statusOf(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody decodes a JSON request body into v. Coded errors from custom
// unmarshalers (such as INVALID_SCHEMA) pass through; other decode
// failures are INVALID_INPUT and an oversized body is RESOURCE_EXHAUSTED.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return lperrors.New(lperrors.ErrCodeResourceExhausted, "request body exceeds %d bytes", tooLarge.Limit)
		case lperrors.GetCode(err) != "":
			return err
		default:
			return lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "invalid request body")
		}
	}
	return nil
}

func notFound(format string, args ...any) error {
	return lperrors.New(lperrors.ErrCodeNotFound, format, args...)
}
