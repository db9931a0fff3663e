package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const fallbackMessage = "Request failed"

var (
	// ErrNotFound matches an *Error with status 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches an *Error with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("holidaze api unavailable")
)

// ErrorDetail is one entry of the API error list.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
	Details []ErrorDetail
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

type errorBody struct {
	Errors  []ErrorDetail `json:"errors"`
	Message string        `json:"message"`
}

// decodeError reads the error body: the first listed error message, then the
// top-level message, then a generic fallback.
func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode, Message: fallbackMessage}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	apiErr.Details = body.Errors
	switch {
	case len(body.Errors) > 0 && body.Errors[0].Message != "":
		apiErr.Message = body.Errors[0].Message
	case body.Message != "":
		apiErr.Message = body.Message
	}
	return apiErr
}

// Message returns the text to show a user for err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return "The booking service is temporarily unavailable. Please try again shortly."
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
