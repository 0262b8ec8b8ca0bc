package index

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"ringdht/rdcommon"
)

func TestNewBTreeRejectsSmallOrder(t *testing.T) {
	for _, order := range []int{0, 1, 2} {
		_, err := NewBTree(order)
		require.ErrorIs(t, err, rdcommon.ErrInvalidConfiguration)
	}
	b, err := NewBTree(3)
	require.NoError(t, err)
	require.Equal(t, 3, b.Order())
}

// Order 3 keeps nodes tiny so a few dozen keys force repeated splits.
func TestBTreeSplitsStayOrdered(t *testing.T) {
	b, err := NewBTree(3)
	require.NoError(t, err)
	for k := rdcommon.ID(0); k < 100; k++ {
		require.NoError(t, b.Insert(FileRecord{Key: k, Path: fmt.Sprintf("f%d", k)}))
	}
	require.Equal(t, 100, b.Len())
	requireAscending(t, b, 100)

	for k := rdcommon.ID(0); k < 100; k++ {
		p, err := b.Lookup(k)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("f%d", k), p)
	}
}

// Deleting in insertion order drives the borrow and merge paths, including
// root shrink all the way back to an empty tree.
func TestBTreeDeleteDrainsTree(t *testing.T) {
	for _, order := range []int{3, 4, 5, 7} {
		t.Run(fmt.Sprintf("order-%d", order), func(t *testing.T) {
			b, err := NewBTree(order)
			require.NoError(t, err)

			const n = 200
			for k := rdcommon.ID(0); k < n; k++ {
				require.NoError(t, b.Insert(FileRecord{Key: k, Path: "p"}))
			}
			for k := rdcommon.ID(0); k < n; k++ {
				_, err := b.Remove(k)
				require.NoError(t, err, "removing %d", k)
				require.Equal(t, int(n-k-1), b.Len())
				requireAscending(t, b, int(n-k-1))
			}
			_, err = b.Lookup(0)
			require.ErrorIs(t, err, rdcommon.ErrNotFound)

			// The drained tree accepts new records.
			require.NoError(t, b.Insert(FileRecord{Key: 1, Path: "again"}))
			require.Equal(t, 1, b.Len())
		})
	}
}

func TestBTreeRemoveInternalKeys(t *testing.T) {
	b, err := NewBTree(3)
	require.NoError(t, err)

	keys := []rdcommon.ID{50, 20, 80, 10, 30, 60, 90, 5, 15, 25, 35, 55, 65, 85, 95}
	for _, k := range keys {
		require.NoError(t, b.Insert(FileRecord{Key: k, Path: fmt.Sprintf("f%d", k)}))
	}
	// Remove in an order that hits internal records, not just leaves.
	for _, k := range []rdcommon.ID{50, 30, 80, 20, 10, 90} {
		p, err := b.Remove(k)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("f%d", k), p)
		_, err = b.Lookup(k)
		require.ErrorIs(t, err, rdcommon.ErrNotFound)
	}
	require.Equal(t, len(keys)-6, b.Len())
	requireAscending(t, b, len(keys)-6)
}

func TestBTreeRandomChurnKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b, err := NewBTree(4)
	require.NoError(t, err)
	live := map[rdcommon.ID]bool{}

	for op := 0; op < 3000; op++ {
		k := rdcommon.ID(rng.Intn(300))
		if rng.Intn(2) == 0 {
			err := b.Insert(FileRecord{Key: k, Path: "p"})
			if live[k] {
				require.ErrorIs(t, err, rdcommon.ErrDuplicateKey)
			} else {
				require.NoError(t, err)
				live[k] = true
			}
		} else {
			_, err := b.Remove(k)
			if live[k] {
				require.NoError(t, err)
				delete(live, k)
			} else {
				require.ErrorIs(t, err, rdcommon.ErrNotFound)
			}
		}
		requireNodeBounds(t, b)
	}
	require.Equal(t, len(live), b.Len())
}

func requireAscending(t *testing.T, idx Index, wantLen int) {
	t.Helper()
	var prev rdcommon.ID
	n := 0
	idx.Ascend(func(rec FileRecord) bool {
		if n > 0 {
			require.Greater(t, rec.Key, prev)
		}
		prev = rec.Key
		n++
		return true
	})
	require.Equal(t, wantLen, n)
}

// requireNodeBounds checks the structural B-tree invariants: record counts
// within [t-1, 2t-1] off the root, and children = records + 1 on internal
// nodes.
func requireNodeBounds(t *testing.T, b *BTree) {
	t.Helper()
	if b.root == nil {
		return
	}
	var walk func(n *btreeNode, isRoot bool)
	walk = func(n *btreeNode, isRoot bool) {
		if !isRoot {
			require.GreaterOrEqual(t, len(n.recs), b.t-1)
		}
		require.LessOrEqual(t, len(n.recs), 2*b.t-1)
		if !n.leaf() {
			require.Equal(t, len(n.recs)+1, len(n.children))
			for _, c := range n.children {
				walk(c, false)
			}
		}
	}
	walk(b.root, true)
}
