package analytics

import "errors"

// ErrInvalidUser is returned for a blank username.
var ErrInvalidUser = errors.New("username is required")
