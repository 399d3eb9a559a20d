package model

import "errors"

// Error kinds shared across layers. Adapters wrap these so the HTTP layer can
// map failures with errors.Is without importing every adapter.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream failure")
)
