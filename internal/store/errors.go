package store

import "errors"

// ErrInvalidContentRef reports a collection entry whose content reference is
// not a canonical UUID.
var ErrInvalidContentRef = errors.New("invalid content ref")
