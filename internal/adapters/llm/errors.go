package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneration marks every failure to obtain a narrative.
	ErrGeneration = errors.New("narrative generation failed")
	// ErrEmptyCompletion is returned when the provider answered with no text.
	ErrEmptyCompletion = fmt.Errorf("%w: empty completion", ErrGeneration)
	// ErrUnknownProvider is returned by New for unsupported provider names.
	ErrUnknownProvider = errors.New("unknown llm provider")
)
