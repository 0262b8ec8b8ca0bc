package rdcommon

import (
	"github.com/pkg/errors"
)

// Error kinds surfaced by the core. All are recoverable; callers classify
// wrapped errors with errors.Is.
var (
	ErrOutOfRange           = errors.New("identifier out of range")
	ErrDuplicateID          = errors.New("machine already in ring")
	ErrUnknownID            = errors.New("machine not in ring")
	ErrDuplicateKey         = errors.New("file key already stored")
	ErrNotFound             = errors.New("not found")
	ErrEmptyRing            = errors.New("ring is empty")
	ErrRoutingLoop          = errors.New("routing loop detected")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
