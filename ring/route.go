package ring

import (
	"github.com/pkg/errors"

	"ringdht/rdcommon"
)

// Responsible reports whether m owns key under the half-open arc rule:
// key lies in (predecessor(m), m]. A single-machine ring owns everything.
func (r *Ring) Responsible(m *Machine, key rdcommon.ID) bool {
	if r.Len() == 1 {
		return true
	}
	pred := r.Predecessor(m.id)
	return rdcommon.Between(key, pred.id, m.id)
}

// ResponsibleMachine locates the owner of key by direct ring walk, without
// routing. Nil on an empty ring.
func (r *Ring) ResponsibleMachine(key rdcommon.ID) *Machine {
	return r.Successor(key)
}

// Route walks finger tables from start towards the machine responsible
// for key and returns the ids visited, start first, owner last. Each hop
// goes to the successor of the farthest finger target that does not pass
// key on the cyclic arc; when no finger qualifies the immediate successor
// is the fallback. The visited guard terminates the walk if a hop repeats,
// which cannot happen on freshly rebuilt tables.
func (r *Ring) Route(start, key rdcommon.ID) ([]rdcommon.ID, error) {
	if r.Len() == 0 {
		return nil, errors.Wrap(rdcommon.ErrEmptyRing, "route")
	}
	if err := r.space.CheckID(start); err != nil {
		return nil, err
	}
	if err := r.space.CheckID(key); err != nil {
		return nil, err
	}
	c, found := r.Machine(start)
	if !found {
		return nil, errors.Wrapf(rdcommon.ErrUnknownID, "start machine %d", start)
	}

	path := []rdcommon.ID{start}
	visited := map[rdcommon.ID]bool{start: true}

	for {
		if r.Responsible(c, key) {
			r.log.Route("key %d: %v", key, path)
			return path, nil
		}

		var next *Machine
		for _, e := range c.fingers.entries {
			if e.machine == nil {
				continue
			}
			if rdcommon.Between(e.Target, c.id, key) {
				next = e.machine
			}
		}
		if next == nil {
			// Entry 0 targets own+1, so it always holds the immediate successor.
			next = c.fingers.entries[0].machine
		}

		if next == nil || visited[next.id] {
			return path, errors.Wrapf(rdcommon.ErrRoutingLoop, "key %d via %v", key, path)
		}

		c = next
		path = append(path, c.id)
		visited[c.id] = true
	}
}
