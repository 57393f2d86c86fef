package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout           = errors.New("completion request timed out")
	ErrConnection        = errors.New("cannot reach completion endpoint")
	ErrMalformedResponse = errors.New("malformed completion response")
)

const (
	DetailProviderError     = "Gemini API error"
	DetailMalformedResponse = "Invalid response from Gemini API"
)

// StatusError reports a non-success HTTP status from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.Code)
}

// ErrorDetail maps err to the detail text shown to HTTP and websocket callers.
func ErrorDetail(err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return DetailProviderError
	case errors.Is(err, ErrMalformedResponse):
		return DetailMalformedResponse
	default:
		return err.Error()
	}
}
