package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a structured failure reported by the server.
type APIError struct {
	Status int
	Detail string
	Source map[string]any
}

func (e *APIError) Error() string {
	if e.Status != 0 && e.Status != http.StatusOK {
		return fmt.Sprintf("api: %s (HTTP %d)", e.Detail, e.Status)
	}
	return "api: " + e.Detail
}

// DecodeError reports a response body that does not have the expected shape.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Result is either a decoded payload or a server error, never both.
type Result[T any] struct {
	value T
	err   *APIError
}

// Ok wraps a successful payload.
func Ok[T any](v T) Result[T] { return Result[T]{value: v} }

// Err wraps a server error.
func Err[T any](e *APIError) Result[T] { return Result[T]{err: e} }

// IsErr reports whether the result carries a server error.
func (r Result[T]) IsErr() bool { return r.err != nil }

// Unwrap returns the payload or the server error.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

type envelope struct {
	Detail string         `json:"detail"`
	Source map[string]any `json:"source"`
}

// asEnvelope reports whether body is exactly an error envelope: an object
// holding a string "detail" and at most a "source" besides it.
func asEnvelope(body []byte) (*envelope, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	rawDetail, ok := fields["detail"]
	if !ok {
		return nil, false
	}
	for k := range fields {
		if k != "detail" && k != "source" {
			return nil, false
		}
	}
	var env envelope
	if err := json.Unmarshal(rawDetail, &env.Detail); err != nil {
		return nil, false
	}
	if rawSource, ok := fields["source"]; ok && !bytes.Equal(bytes.TrimSpace(rawSource), []byte("null")) {
		if err := json.Unmarshal(rawSource, &env.Source); err != nil {
			return nil, false
		}
	}
	return &env, true
}

// decodeResult turns a status code and body into a Result. The returned
// error is only set when a 2xx body cannot be decoded into T.
func decodeResult[T any](path string, status int, body []byte) (Result[T], error) {
	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status, Detail: http.StatusText(status)}
		if env, ok := asEnvelope(body); ok {
			apiErr.Detail = env.Detail
			apiErr.Source = env.Source
		}
		return Err[T](apiErr), nil
	}

	if env, ok := asEnvelope(body); ok {
		return Err[T](&APIError{Status: status, Detail: env.Detail, Source: env.Source}), nil
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return Result[T]{}, &DecodeError{Path: path, Err: err}
	}
	return Ok(v), nil
}
