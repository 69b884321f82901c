package session

import (
	"errors"
	"fmt"
)

// ErrAuthUnavailable is returned when platform auth is configured, the
// platform identity cannot be resolved, and guest fallback is disabled.
var ErrAuthUnavailable = errors.New("platform identity unavailable and guest fallback disabled")

// ErrMalformedSessionResponse is returned when the session-create reply is
// missing its session id or JWT.
var ErrMalformedSessionResponse = errors.New("malformed session response")

// CreateError is a non-2xx outcome from the session-create endpoint. It is
// terminal for the triggering call; session creation is never retried at
// this layer.
type CreateError struct {
	Status int
	Body   string
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("session create failed: HTTP %d: %s", e.Status, e.Body)
}
