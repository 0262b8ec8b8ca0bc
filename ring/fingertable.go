package ring

import (
	"ringdht/rdcommon"
)

// Entry is one finger: the geometric target (own + 2^i) mod 2^bits and the
// machine currently succeeding that target. The machine pointer is a
// lookup-style reference, never ownership; every rebuild refreshes it.
type Entry struct {
	Target    rdcommon.ID
	Successor rdcommon.ID

	machine *Machine
}

// Machine returns the referenced successor machine as of the last rebuild.
func (e Entry) Machine() *Machine {
	return e.machine
}

// FingerTable holds exactly bits entries once built. On a single-machine
// ring every entry points back at that machine.
type FingerTable struct {
	entries []Entry
}

// Build recomputes all entries against the current ring. The ring must be
// non-empty.
func (ft *FingerTable) Build(own rdcommon.ID, r *Ring) {
	bits := r.Space().Bits()
	if cap(ft.entries) < bits {
		ft.entries = make([]Entry, bits)
	}
	ft.entries = ft.entries[:bits]
	for i := 0; i < bits; i++ {
		target := r.Space().FingerTarget(own, i)
		succ := r.Successor(target)
		ft.entries[i] = Entry{Target: target, Successor: succ.ID(), machine: succ}
	}
}

// Entries returns the table in order i = 0..bits-1. The slice is shared;
// callers must not mutate it.
func (ft *FingerTable) Entries() []Entry {
	return ft.entries
}

func (ft *FingerTable) Len() int {
	return len(ft.entries)
}
