package rdcommon

import (
	"github.com/cespare/xxhash/v2"
)

// HashInSpace maps an arbitrary string into the identifier space.
// Deterministic; placement uniformity is whatever xxhash gives, which is
// plenty for a simulator.
func HashInSpace(s string, space Space) ID {
	return ID(xxhash.Sum64String(s) % uint64(space.Size()))
}
