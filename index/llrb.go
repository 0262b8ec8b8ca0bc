package index

import (
	"github.com/Connor1996/badger/y"
	"github.com/petar/GoLLRB/llrb"
	"github.com/pkg/errors"

	"ringdht/rdcommon"
)

// LLRB is an Index backed by a left-leaning red-black tree. It satisfies
// the same contract as BTree without a tunable branching factor.
type LLRB struct {
	tree *llrb.LLRB
}

type llrbItem struct {
	key  rdcommon.ID
	path []byte
}

func (it llrbItem) Less(than llrb.Item) bool {
	return it.key < than.(llrbItem).key
}

func (it llrbItem) record() FileRecord {
	return FileRecord{Key: it.key, Path: string(it.path)}
}

func NewLLRB() *LLRB {
	return &LLRB{tree: llrb.New()}
}

func (s *LLRB) Len() int {
	return s.tree.Len()
}

func (s *LLRB) Insert(rec FileRecord) error {
	probe := llrbItem{key: rec.Key}
	if s.tree.Get(probe) != nil {
		return errors.Wrapf(rdcommon.ErrDuplicateKey, "file key %d", rec.Key)
	}
	item := llrbItem{key: rec.Key, path: y.SafeCopy(nil, []byte(rec.Path))}
	s.tree.ReplaceOrInsert(item)
	return nil
}

func (s *LLRB) Lookup(key rdcommon.ID) (string, error) {
	result := s.tree.Get(llrbItem{key: key})
	if result == nil {
		return "", errors.Wrapf(rdcommon.ErrNotFound, "file key %d", key)
	}
	return string(result.(llrbItem).path), nil
}

func (s *LLRB) Remove(key rdcommon.ID) (string, error) {
	removed := s.tree.Delete(llrbItem{key: key})
	if removed == nil {
		return "", errors.Wrapf(rdcommon.ErrNotFound, "file key %d", key)
	}
	return string(removed.(llrbItem).path), nil
}

func (s *LLRB) Ascend(fn func(rec FileRecord) bool) {
	s.tree.AscendGreaterOrEqual(llrbItem{}, func(item llrb.Item) bool {
		return fn(item.(llrbItem).record())
	})
}

func (s *LLRB) Iter() Iterator {
	it := &llrbIter{tree: s.tree}
	min := s.tree.Min()
	if min != nil {
		it.item = min.(llrbItem)
		it.valid = true
	}
	return it
}

type llrbIter struct {
	tree  *llrb.LLRB
	item  llrbItem
	valid bool
}

func (it *llrbIter) Item() FileRecord {
	return it.item.record()
}

func (it *llrbIter) Valid() bool {
	return it.valid
}

func (it *llrbIter) Next() {
	if !it.valid {
		return
	}
	first := true
	old := it.item
	it.valid = false
	it.tree.AscendGreaterOrEqual(old, func(item llrb.Item) bool {
		// Skip the first item, which is the current position.
		if first {
			first = false
			return true
		}
		it.item = item.(llrbItem)
		it.valid = true
		return false
	})
}

func (it *llrbIter) Seek(key rdcommon.ID) {
	it.valid = false
	it.tree.AscendGreaterOrEqual(llrbItem{key: key}, func(item llrb.Item) bool {
		it.item = item.(llrbItem)
		it.valid = true
		return false
	})
}
