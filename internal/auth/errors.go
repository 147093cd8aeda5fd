package auth

import "errors"

// ErrEmptyToken is returned when asked to store an empty token.
var ErrEmptyToken = errors.New("token cannot be empty")
