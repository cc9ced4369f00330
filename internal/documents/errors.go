package documents

import "errors"

// ErrInvalidInput indicates a missing or unusable upload.
var ErrInvalidInput = errors.New("invalid input")
