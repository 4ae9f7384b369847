package domain

import "errors"

// ErrValidation marks input errors rejected before any mutation. Wrap it
// with the human-readable reason: fmt.Errorf("%w: quantity must be at least 1", ErrValidation).
var ErrValidation = errors.New("validation failed")
