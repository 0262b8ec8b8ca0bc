package ring

import (
	"ringdht/index"
	"ringdht/rdcommon"
)

// Machine is one participant on the ring: an immutable id, a finger table
// and the local index of file records it is responsible for. Machines are
// created on join and become unreachable on leave; the Ring owns them.
type Machine struct {
	id      rdcommon.ID
	fingers FingerTable
	files   index.Index
}

func newMachine(id rdcommon.ID, files index.Index) *Machine {
	return &Machine{id: id, files: files}
}

func (m *Machine) ID() rdcommon.ID {
	return m.id
}

// Files is the machine's local index.
func (m *Machine) Files() index.Index {
	return m.files
}

// Fingers is the machine's routing table. Entries are only meaningful
// after the ring has rebuilt them for the current topology.
func (m *Machine) Fingers() *FingerTable {
	return &m.fingers
}
