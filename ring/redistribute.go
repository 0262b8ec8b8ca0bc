package ring

import (
	"github.com/Connor1996/badger/y"

	"ringdht/index"
	"ringdht/rdcommon"
)

// redistributeJoin pulls into m every record of its successor whose key
// now falls in the arc (predecessor(m), m]. Runs after the membership
// insert and before the finger rebuild; routing is never consulted.
func (r *Ring) redistributeJoin(m *Machine) []index.FileRecord {
	pred := r.Predecessor(m.id)
	succ := r.successorOf(m)

	var toMove []index.FileRecord
	succ.files.Ascend(func(rec index.FileRecord) bool {
		if rdcommon.Between(rec.Key, pred.id, m.id) {
			toMove = append(toMove, rec)
		}
		return true
	})

	for _, rec := range toMove {
		_, err := succ.files.Remove(rec.Key)
		y.AssertTruef(err == nil, "record %d disappeared from machine %d", rec.Key, succ.id)
		if err := m.files.Insert(rec); err != nil {
			r.log.Error("redistribute to %d: %v", m.id, err)
			continue
		}
		r.log.Move("file %d (%s) moved %d -> %d", rec.Key, rec.Path, succ.id, m.id)
	}
	return toMove
}

// redistributeLeave pushes every record of the leaving machine m to succ.
func (r *Ring) redistributeLeave(m *Machine, succ *Machine) []index.FileRecord {
	var moved []index.FileRecord
	m.files.Ascend(func(rec index.FileRecord) bool {
		moved = append(moved, rec)
		return true
	})

	for _, rec := range moved {
		if err := succ.files.Insert(rec); err != nil {
			r.log.Error("redistribute to %d: %v", succ.id, err)
			continue
		}
		r.log.Move("file %d (%s) moved %d -> %d", rec.Key, rec.Path, m.id, succ.id)
	}
	return moved
}
