package client

import (
	"errors"
	"fmt"
)

// ErrMalformedChatResponse is returned when a 2xx chat reply body cannot be
// parsed.
var ErrMalformedChatResponse = errors.New("malformed chat response")

// RateLimitedError is a 429 outcome that survived the whole retry budget.
type RateLimitedError struct {
	Attempts int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts", e.Attempts)
}

// RequestError is any other non-2xx chat outcome. Message is a short
// diagnostic with HTML error pages already stripped down.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}
