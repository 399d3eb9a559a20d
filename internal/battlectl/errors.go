package battlectl

import (
	"errors"
	"fmt"
)

// ErrRequest marks requests that never produced a response.
var ErrRequest = errors.New("request failed")

// StatusError is returned for non-2xx replies. The body is kept so callers
// can still print the server's message.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server answered %d", e.Status)
}
