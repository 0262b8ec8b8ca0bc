package ring

import (
	"errors"
	"testing"

	"ringdht/rdcommon"
)

func TestRouteDirectHop(t *testing.T) {
	r := newTestRing(t, 4, 1, 4, 7, 12, 15)

	// From 1 the farthest finger not past key 9 targets 9 itself, whose
	// successor is 12, and 12 owns (7, 12].
	path, err := r.Route(1, 9)
	if err != nil {
		t.Fatal(err)
	}
	requirePath(t, path, 1, 12)
}

func TestRouteFromEveryStart(t *testing.T) {
	r := newTestRing(t, 4, 1, 4, 7, 12, 15)

	for _, start := range []rdcommon.ID{1, 4, 7, 12, 15} {
		path, err := r.Route(start, 9)
		if err != nil {
			t.Fatalf("Route(%d, 9): %v", start, err)
		}
		if path[0] != start || path[len(path)-1] != 12 {
			t.Fatalf("Route(%d, 9) = %v, want start %d end 12", start, path, start)
		}
		requireNoRepeats(t, path)
	}
}

func TestRouteCanonicalTwoBitRing(t *testing.T) {
	r := newTestRing(t, 2, 0, 1, 2, 3)

	// Machine 0's later finger targets 2, so the first hop is 2, then 3.
	path, err := r.Route(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	requirePath(t, path, 0, 2, 3)
}

func TestRouteAtResponsibleMachine(t *testing.T) {
	r := newTestRing(t, 4, 1, 4, 7, 12, 15)
	path, err := r.Route(12, 9)
	if err != nil {
		t.Fatal(err)
	}
	requirePath(t, path, 12)
}

func TestRouteSingleMachineOwnsEverything(t *testing.T) {
	r := newTestRing(t, 4, 6)
	for k := rdcommon.ID(0); k < 16; k++ {
		path, err := r.Route(6, k)
		if err != nil {
			t.Fatalf("Route(6, %d): %v", k, err)
		}
		requirePath(t, path, 6)
	}
}

func TestRouteErrors(t *testing.T) {
	empty := newTestRing(t, 4)
	if _, err := empty.Route(1, 9); !errors.Is(err, rdcommon.ErrEmptyRing) {
		t.Fatalf("route on empty ring err = %v, want ErrEmptyRing", err)
	}

	r := newTestRing(t, 4, 1, 4)
	if _, err := r.Route(9, 3); !errors.Is(err, rdcommon.ErrUnknownID) {
		t.Fatalf("unknown start err = %v, want ErrUnknownID", err)
	}
	if _, err := r.Route(16, 3); !errors.Is(err, rdcommon.ErrOutOfRange) {
		t.Fatalf("out-of-range start err = %v, want ErrOutOfRange", err)
	}
	if _, err := r.Route(1, 16); !errors.Is(err, rdcommon.ErrOutOfRange) {
		t.Fatalf("out-of-range key err = %v, want ErrOutOfRange", err)
	}
}

// Every (start, key) pair terminates at the rule-R owner with no repeated
// hops.
func TestRouteExhaustive(t *testing.T) {
	rings := [][]rdcommon.ID{
		{1, 4, 7, 12, 15},
		{0, 8},
		{5},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		{2, 3, 5, 13},
	}
	for _, ids := range rings {
		r := newTestRing(t, 4, ids...)
		for _, start := range ids {
			for k := rdcommon.ID(0); k < 16; k++ {
				path, err := r.Route(start, k)
				if err != nil {
					t.Fatalf("ring %v Route(%d, %d): %v", ids, start, k, err)
				}
				requireNoRepeats(t, path)
				owner := path[len(path)-1]
				if want := r.ResponsibleMachine(k).ID(); owner != want {
					t.Fatalf("ring %v Route(%d, %d) ended at %d, want %d", ids, start, k, owner, want)
				}
			}
		}
	}
}

func requirePath(t *testing.T, got []rdcommon.ID, want ...rdcommon.ID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path = %v, want %v", got, want)
		}
	}
}

func requireNoRepeats(t *testing.T, path []rdcommon.ID) {
	t.Helper()
	seen := map[rdcommon.ID]bool{}
	for _, id := range path {
		if seen[id] {
			t.Fatalf("path %v repeats machine %d", path, id)
		}
		seen[id] = true
	}
}
