package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Simplici0/tenderpricing/internal/importer"
	"github.com/Simplici0/tenderpricing/internal/store"
	"github.com/Simplici0/tenderpricing/internal/tools"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorMessage(msg string) map[string]tools.ErrorBody {
	return map[string]tools.ErrorBody{"error": {Kind: tools.KindInvalidArguments, Message: msg}}
}

// statusFor maps an error onto an HTTP status: malformed input is 400,
// well-formed input the engine rejects is 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tools.ErrNotFound):
		return http.StatusNotFound
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch tools.Describe(err).Kind {
	case tools.KindInvalidArguments:
		return http.StatusBadRequest
	case tools.KindValidation, tools.KindUnknownStrategy:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError answers with the structured error body. Internal failures are
// logged and their detail is not sent to the client.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := tools.Describe(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		body = tools.ErrorBody{Kind: tools.KindInternal, Message: "internal error"}
	} else if body.Kind == tools.KindInternal {
		body.Kind = tools.KindInvalidArguments
	}
	writeJSON(w, status, map[string]tools.ErrorBody{"error": body})
}

// readBody reads a bounded JSON request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &tools.ArgumentError{Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}
