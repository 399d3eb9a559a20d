package github

import (
	"fmt"

	"github.com/okian/devxbattle/internal/domain/model"
)

var (
	// ErrProfileNotFound is returned when GitHub has no such user.
	ErrProfileNotFound = fmt.Errorf("%w: github profile", model.ErrNotFound)
	// ErrMalformedResponse is returned when a 2xx body does not decode into
	// the expected shape.
	ErrMalformedResponse = fmt.Errorf("%w: malformed github response", model.ErrUpstream)
)
