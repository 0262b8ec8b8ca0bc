package dht

import (
	"ringdht/index"
	"ringdht/rdcommon"
	"ringdht/ring"
)

// Status tags the result of a file operation that reached a responsible
// machine. Conditions that stop an operation before routing (empty ring,
// unknown start, out-of-range ids) surface as errors instead.
type Status int

const (
	StatusOK Status = iota
	StatusFound
	StatusNotFound
	StatusDuplicateKey
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFound:
		return "FOUND"
	case StatusNotFound:
		return "NOT-FOUND"
	case StatusDuplicateKey:
		return "DUPLICATE-KEY"
	}
	return "UNKNOWN"
}

// FileOutcome reports one insert/search/delete: the file key, the machine
// found responsible, the payload path when there is one, and the routing
// trace from the start machine to the responsible one.
type FileOutcome struct {
	Status      Status
	Key         rdcommon.ID
	Responsible rdcommon.ID
	Path        string
	Trace       []rdcommon.ID
}

// JoinOutcome reports a join: the id added and the records pulled from the
// successor.
type JoinOutcome struct {
	ID    rdcommon.ID
	Moved []index.FileRecord
}

// LeaveOutcome reports a leave: the records pushed to the successor, or
// the count lost when the last machine left.
type LeaveOutcome struct {
	ID    rdcommon.ID
	Moved []index.FileRecord
	Lost  int
}

// JoinAllOutcome reports a bulk join.
type JoinAllOutcome struct {
	Joined  []rdcommon.ID
	Skipped []ring.SkippedJoin
}

// MachineStatus is one row of a ring status summary.
type MachineStatus struct {
	ID    rdcommon.ID
	Files int
}
