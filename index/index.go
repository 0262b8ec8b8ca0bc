// Package index holds a machine's local sorted store of file records,
// keyed by the hash of the file path. Two engines implement the same
// contract: a multi-way B-tree with configurable order and an LLRB tree.
// Redistribution depends on the ordered traversal both of them guarantee.
package index

import (
	"github.com/pkg/errors"

	"ringdht/rdcommon"
)

// FileRecord is one stored (file key, path) pair. The key is derived from
// the path by the hash provider; the index treats it as authoritative.
type FileRecord struct {
	Key  rdcommon.ID
	Path string
}

type Index interface {
	// Insert stores rec. ErrDuplicateKey when the key is already present;
	// the existing record is left untouched.
	Insert(rec FileRecord) error
	// Lookup returns the path stored under key, or ErrNotFound.
	Lookup(key rdcommon.ID) (string, error)
	// Remove deletes the record under key and returns its path, or ErrNotFound.
	Remove(key rdcommon.ID) (string, error)
	// Ascend walks records in ascending key order until fn returns false.
	Ascend(fn func(rec FileRecord) bool)
	// Iter returns a restartable ascending iterator.
	Iter() Iterator
	Len() int
}

// Iterator walks an index in ascending key order. Always check Valid()
// after a Next() to ensure you have access to a valid Item().
type Iterator interface {
	Item() FileRecord
	Valid() bool
	Next()
	// Seek positions on key if present, else on the next greater key.
	Seek(key rdcommon.ID)
}

// Backend selects the storage engine behind an Index.
type Backend int

const (
	BackendBTree Backend = iota
	BackendLLRB
)

// MinOrder is the smallest legal B-tree order (branching factor).
const MinOrder = 3

// New builds an empty index. order configures the B-tree branching factor
// and must be >= MinOrder; the LLRB engine ignores it.
func New(backend Backend, order int) (Index, error) {
	switch backend {
	case BackendBTree:
		return NewBTree(order)
	case BackendLLRB:
		return NewLLRB(), nil
	}
	return nil, errors.Wrapf(rdcommon.ErrInvalidConfiguration, "unknown index backend %d", backend)
}
