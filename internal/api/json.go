package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
)

// maxBodyBytes caps JSON request bodies; post sources are the largest.
const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error  string            `json:"error" validate:"required"`
	Fields map[string]string `json:"fields,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

// pathParam returns a URL parameter in decoded form. chi routes on RawPath
// when it is set, leaving parameters escaped; otherwise they are already
// decoded and must not be unescaped again.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeValidation renders ozzo validation errors as a 400 with per-field
// messages.
func writeValidation(w http.ResponseWriter, err error) {
	body := errorBody("validation failed")
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		body.Fields = make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			body.Fields[field] = ferr.Error()
		}
	} else {
		body.Error = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// writeError maps domain errors to HTTP statuses. Anything unrecognised is
// logged and reported as 500.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody(apperr.ErrUnauthorized.Error()))
	case errors.Is(err, apperr.ErrInvalidParent):
		writeJSON(w, http.StatusBadRequest, errorBody(apperr.ErrInvalidParent.Error()))
	case errors.Is(err, apperr.ErrInvalidSlug):
		writeJSON(w, http.StatusBadRequest, errorBody("slug may contain only lowercase letters, digits and hyphens"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	default:
		attrs = append(attrs, slog.String("error", err.Error()))
		h.logger.Error(op+" failed", attrs...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
