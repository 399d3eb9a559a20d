package repository

import (
	"errors"
	"fmt"

	"github.com/okian/devxbattle/internal/domain/model"
)

// Sentinel kinds for user store errors.
var (
	ErrNotFound      = fmt.Errorf("%w: user", model.ErrNotFound)
	ErrDuplicateKey  = errors.New("username or wallet address already exists")
	ErrInvalidUser   = fmt.Errorf("%w: username and wallet address are required", model.ErrValidation)
	ErrUnknownDriver = errors.New("unknown store driver")
)
