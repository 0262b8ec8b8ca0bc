// Package ring implements the membership structure of the DHT: the sorted
// cyclic set of live machines, their finger tables, the iterative routing
// engine and the file redistribution protocol on join and leave.
package ring

import (
	avl "github.com/emirpasic/gods/trees/avltree"
	"github.com/pkg/errors"

	"ringdht/index"
	"ringdht/rdcommon"
	"ringdht/rdlogger"
)

// Ring is the set of live machines, ordered by id, closed cyclically. It
// exclusively owns the machines it holds.
type Ring struct {
	space   rdcommon.Space
	tree    *avl.Tree // rdcommon.ID -> *Machine
	backend index.Backend
	order   int
	log     *rdlogger.RingLogger
}

func idComparator(a, b interface{}) int {
	ka := a.(rdcommon.ID)
	kb := b.(rdcommon.ID)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

// NewRing builds an empty ring over space. backend and order configure the
// local index created for each joining machine.
func NewRing(space rdcommon.Space, backend index.Backend, order int, log *rdlogger.RingLogger) (*Ring, error) {
	if order < index.MinOrder {
		return nil, errors.Wrapf(rdcommon.ErrInvalidConfiguration, "branching factor %d below minimum %d", order, index.MinOrder)
	}
	if log == nil {
		log = rdlogger.NewRingDebugLogger()
	}
	log.SetContext(space.Bits(), 0)
	return &Ring{
		space:   space,
		tree:    avl.NewWith(idComparator),
		backend: backend,
		order:   order,
		log:     log,
	}, nil
}

func (r *Ring) Space() rdcommon.Space {
	return r.space
}

func (r *Ring) Len() int {
	return r.tree.Size()
}

func (r *Ring) Exists(id rdcommon.ID) bool {
	_, found := r.tree.Get(id)
	return found
}

// Machine returns the live machine with the given id.
func (r *Ring) Machine(id rdcommon.ID) (*Machine, bool) {
	v, found := r.tree.Get(id)
	if !found {
		return nil, false
	}
	return v.(*Machine), true
}

// Successor returns the live machine with the smallest id >= k, wrapping
// to the smallest id when k exceeds every member. Nil on an empty ring.
func (r *Ring) Successor(k rdcommon.ID) *Machine {
	if r.tree.Size() == 0 {
		return nil
	}
	if node, found := r.tree.Ceiling(k); found {
		return node.Value.(*Machine)
	}
	return r.tree.Left().Value.(*Machine)
}

// Predecessor returns the machine immediately preceding position id in
// cyclic ascending order; for the smallest member that is the largest one.
// Nil on an empty ring.
func (r *Ring) Predecessor(id rdcommon.ID) *Machine {
	if r.tree.Size() == 0 {
		return nil
	}
	if id > 0 {
		if node, found := r.tree.Floor(id - 1); found {
			return node.Value.(*Machine)
		}
	}
	return r.tree.Right().Value.(*Machine)
}

// Ascend walks live machines in ascending id order, starting from the
// smallest, until fn returns false.
func (r *Ring) Ascend(fn func(m *Machine) bool) {
	it := r.tree.Iterator()
	for it.Next() {
		if !fn(it.Value().(*Machine)) {
			return
		}
	}
}

// IDs returns the member ids in ascending order.
func (r *Ring) IDs() []rdcommon.ID {
	ids := make([]rdcommon.ID, 0, r.tree.Size())
	r.Ascend(func(m *Machine) bool {
		ids = append(ids, m.id)
		return true
	})
	return ids
}

// successorOf returns the next machine after m on the ring; m itself when
// it is the only member.
func (r *Ring) successorOf(m *Machine) *Machine {
	return r.Successor(r.space.Next(m.id))
}

// Join adds a machine, pulls the records it is now responsible for from
// its successor and rebuilds every finger table. Returns the new machine
// and the records that moved to it.
func (r *Ring) Join(id rdcommon.ID) (*Machine, []index.FileRecord, error) {
	m, moved, err := r.join(id)
	if err != nil {
		return nil, nil, err
	}
	r.RebuildFingers()
	return m, moved, nil
}

// join performs membership insert plus redistribution, leaving the finger
// rebuild to the caller.
func (r *Ring) join(id rdcommon.ID) (*Machine, []index.FileRecord, error) {
	if err := r.space.CheckID(id); err != nil {
		return nil, nil, err
	}
	if r.Exists(id) {
		return nil, nil, errors.Wrapf(rdcommon.ErrDuplicateID, "machine %d", id)
	}
	files, err := index.New(r.backend, r.order)
	if err != nil {
		return nil, nil, err
	}
	m := newMachine(id, files)
	r.tree.Put(id, m)
	r.log.SetContext(r.space.Bits(), r.Len())
	r.log.Topology("machine %d joined", id)

	var moved []index.FileRecord
	if r.Len() > 1 {
		moved = r.redistributeJoin(m)
	}
	return m, moved, nil
}

// JoinAll adds several machines at once, the bootstrap form. Each id is
// validated independently; invalid ones are skipped and reported. Finger
// tables are rebuilt once at the end.
func (r *Ring) JoinAll(ids []rdcommon.ID) (joined []rdcommon.ID, skipped []SkippedJoin) {
	for _, id := range ids {
		if _, _, err := r.join(id); err != nil {
			skipped = append(skipped, SkippedJoin{ID: id, Reason: err})
			continue
		}
		joined = append(joined, id)
	}
	if len(joined) > 0 {
		r.RebuildFingers()
	}
	return joined, skipped
}

// SkippedJoin reports one id a bulk join refused and why.
type SkippedJoin struct {
	ID     rdcommon.ID
	Reason error
}

// Leave removes a machine, pushes its records to its successor and
// rebuilds every finger table. The moved records are returned; lost is
// the number of records dropped when the leaver was the last machine.
func (r *Ring) Leave(id rdcommon.ID) (moved []index.FileRecord, lost int, err error) {
	if err := r.space.CheckID(id); err != nil {
		return nil, 0, err
	}
	m, found := r.Machine(id)
	if !found {
		return nil, 0, errors.Wrapf(rdcommon.ErrUnknownID, "machine %d", id)
	}

	succ := r.successorOf(m)
	r.tree.Remove(id)
	r.log.SetContext(r.space.Bits(), r.Len())
	r.log.Topology("machine %d left", id)

	if r.Len() == 0 {
		lost = m.files.Len()
		if lost > 0 {
			r.log.Error("last machine %d left, %d record(s) lost", id, lost)
		}
		return nil, lost, nil
	}

	moved = r.redistributeLeave(m, succ)
	r.RebuildFingers()
	return moved, 0, nil
}

// RebuildFingers recomputes every machine's finger table against the
// current membership.
func (r *Ring) RebuildFingers() {
	r.Ascend(func(m *Machine) bool {
		m.fingers.Build(m.id, r)
		return true
	})
}
