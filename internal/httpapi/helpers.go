package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/anthropics/codegraph/internal/buildengine"
	"github.com/anthropics/codegraph/internal/store"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, errBody)
		return false
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

var errBody = errors.New("httpapi: missing request body")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, payload string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps a typed sentinel error to the HTTP status §7's error
// taxonomy implies: configuration errors abort with 400, query errors
// (unknown entity, depth over the hard cap) return 404/422, anything
// else is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, buildengine.ErrProjectDirUnreadable):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDepthExceedsCap):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(q url.Values, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
