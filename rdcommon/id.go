package rdcommon

import (
	"github.com/pkg/errors"
)

// ID is a machine or file identifier on the ring. All IDs live in
// [0, 2^bits) and all arithmetic on them is modulo the space size.
type ID uint32

const (
	MinBits = 1
	MaxBits = 31
)

// Space is the cyclic identifier space [0, 2^bits).
type Space struct {
	bits int
	size uint32
}

func NewSpace(bits int) (Space, error) {
	if bits < MinBits || bits > MaxBits {
		return Space{}, errors.Wrapf(ErrInvalidConfiguration, "bits %d not in [%d, %d]", bits, MinBits, MaxBits)
	}
	return Space{bits: bits, size: 1 << uint(bits)}, nil
}

func (s Space) Bits() int {
	return s.bits
}

func (s Space) Size() uint32 {
	return s.size
}

func (s Space) MaxID() ID {
	return ID(s.size - 1)
}

// Contains reports whether id is a valid identifier in this space.
func (s Space) Contains(id ID) bool {
	return uint32(id) < s.size
}

// CheckID returns ErrOutOfRange when id does not lie in the space.
func (s Space) CheckID(id ID) error {
	if !s.Contains(id) {
		return errors.Wrapf(ErrOutOfRange, "id %d not in [0, %d)", id, s.size)
	}
	return nil
}

// Add returns (id + delta) mod 2^bits.
func (s Space) Add(id ID, delta uint32) ID {
	return ID((uint32(id) + delta) % s.size)
}

// Next returns the identifier immediately after id on the ring.
func (s Space) Next(id ID) ID {
	return s.Add(id, 1)
}

// FingerTarget returns (own + 2^i) mod 2^bits, the target of finger entry i.
func (s Space) FingerTarget(own ID, i int) ID {
	return s.Add(own, uint32(1)<<uint(i))
}
