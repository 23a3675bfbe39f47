package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// MaxJSONBodyBytes bounds a JSON request body.
const MaxJSONBodyBytes = 1 << 20

// ErrEmptyBody is returned by ParseJSON for a request without a body.
var ErrEmptyBody = errors.New("request body is empty")

// ParseJSON decodes exactly one JSON value from the request body into dest.
func ParseJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: unexpected data after the request value")
	}
	return nil
}

// ParseJSONOrError decodes a bounded JSON body and writes 400, or 413 when
// the body exceeds MaxJSONBodyBytes.
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)
	}
	if err := ParseJSON(r, dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteErrorMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ParsePathInt64 reads the mux variable key as an int64.
func ParsePathInt64(r *http.Request, key string) (int64, error) {
	str := mux.Vars(r)[key]
	if str == "" {
		return 0, fmt.Errorf("missing path parameter: %s", key)
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %s", key, str)
	}
	return val, nil
}

// ParsePathInt64OrError is ParsePathInt64 writing 400 on failure.
func ParsePathInt64OrError(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	val, err := ParsePathInt64(r, key)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return 0, false
	}
	return val, true
}

// ParseQueryInt64 reads an optional int64 query parameter. Absent or empty
// values yield def; anything else must parse.
func ParseQueryInt64(r *http.Request, key string, def int64) (int64, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return def, nil
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for query parameter %s: %s", key, str)
	}
	return val, nil
}

// ParseQueryInt64OrError is ParseQueryInt64 writing 400 on failure.
func ParseQueryInt64OrError(w http.ResponseWriter, r *http.Request, key string, def int64) (int64, bool) {
	val, err := ParseQueryInt64(r, key, def)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return 0, false
	}
	return val, true
}
