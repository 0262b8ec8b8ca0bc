package index

import (
	"sort"

	"github.com/Connor1996/badger/y"
	"github.com/pkg/errors"

	"ringdht/rdcommon"
)

// BTree is a multi-way balanced search tree of configurable order. An
// order-m tree keeps between t-1 and 2t-1 records per node, t = (m+1)/2,
// so every point operation is O(log F) in the record count F.
type BTree struct {
	root  *btreeNode
	t     int // minimum degree
	order int
	size  int
}

type btreeNode struct {
	recs     []FileRecord
	children []*btreeNode // empty for leaves
}

func (n *btreeNode) leaf() bool {
	return len(n.children) == 0
}

// lowerBound returns the first record position whose key is >= key.
func (n *btreeNode) lowerBound(key rdcommon.ID) int {
	return sort.Search(len(n.recs), func(i int) bool { return n.recs[i].Key >= key })
}

func NewBTree(order int) (*BTree, error) {
	if order < MinOrder {
		return nil, errors.Wrapf(rdcommon.ErrInvalidConfiguration, "btree order %d below minimum %d", order, MinOrder)
	}
	return &BTree{t: (order + 1) / 2, order: order}, nil
}

func (b *BTree) Order() int {
	return b.order
}

func (b *BTree) Len() int {
	return b.size
}

func (b *BTree) maxRecs() int {
	return 2*b.t - 1
}

func (b *BTree) Lookup(key rdcommon.ID) (string, error) {
	n := b.root
	for n != nil {
		i := n.lowerBound(key)
		if i < len(n.recs) && n.recs[i].Key == key {
			return n.recs[i].Path, nil
		}
		if n.leaf() {
			break
		}
		n = n.children[i]
	}
	return "", errors.Wrapf(rdcommon.ErrNotFound, "file key %d", key)
}

func (b *BTree) Insert(rec FileRecord) error {
	if _, err := b.Lookup(rec.Key); err == nil {
		return errors.Wrapf(rdcommon.ErrDuplicateKey, "file key %d", rec.Key)
	}
	if b.root == nil {
		b.root = &btreeNode{recs: []FileRecord{rec}}
		b.size++
		return nil
	}
	if len(b.root.recs) == b.maxRecs() {
		old := b.root
		b.root = &btreeNode{children: []*btreeNode{old}}
		b.splitChild(b.root, 0)
	}
	b.insertNonFull(b.root, rec)
	b.size++
	return nil
}

// splitChild splits the full child at position i of parent, promoting the
// median record into parent.
func (b *BTree) splitChild(parent *btreeNode, i int) {
	child := parent.children[i]
	y.AssertTrue(len(child.recs) == b.maxRecs())

	mid := b.t - 1
	median := child.recs[mid]

	right := &btreeNode{}
	right.recs = append(right.recs, child.recs[mid+1:]...)
	if !child.leaf() {
		right.children = append(right.children, child.children[mid+1:]...)
		child.children = child.children[:mid+1]
	}
	child.recs = child.recs[:mid]

	parent.recs = append(parent.recs, FileRecord{})
	copy(parent.recs[i+1:], parent.recs[i:])
	parent.recs[i] = median

	parent.children = append(parent.children, nil)
	copy(parent.children[i+2:], parent.children[i+1:])
	parent.children[i+1] = right
}

func (b *BTree) insertNonFull(n *btreeNode, rec FileRecord) {
	for {
		i := n.lowerBound(rec.Key)
		if n.leaf() {
			n.recs = append(n.recs, FileRecord{})
			copy(n.recs[i+1:], n.recs[i:])
			n.recs[i] = rec
			return
		}
		if len(n.children[i].recs) == b.maxRecs() {
			b.splitChild(n, i)
			if rec.Key > n.recs[i].Key {
				i++
			}
		}
		n = n.children[i]
	}
}

func (b *BTree) Remove(key rdcommon.ID) (string, error) {
	path, err := b.Lookup(key)
	if err != nil {
		return "", err
	}
	b.remove(b.root, key)
	b.size--

	// A root drained of records shrinks the tree by one level.
	if len(b.root.recs) == 0 {
		if b.root.leaf() {
			b.root = nil
		} else {
			b.root = b.root.children[0]
		}
	}
	return path, nil
}

// remove deletes key from the subtree at n. n is guaranteed to hold at
// least t records whenever it is not the root, so removal never underflows.
func (b *BTree) remove(n *btreeNode, key rdcommon.ID) {
	i := n.lowerBound(key)
	if i < len(n.recs) && n.recs[i].Key == key {
		if n.leaf() {
			n.recs = append(n.recs[:i], n.recs[i+1:]...)
			return
		}
		b.removeInternal(n, i)
		return
	}

	y.AssertTruef(!n.leaf(), "file key %d vanished mid-removal", key)

	// Make sure the child we descend into can afford to lose a record.
	if len(n.children[i].recs) < b.t {
		i = b.fillChild(n, i)
	}
	b.remove(n.children[i], key)
}

// removeInternal deletes the record at position i of the internal node n.
func (b *BTree) removeInternal(n *btreeNode, i int) {
	key := n.recs[i].Key
	left, right := n.children[i], n.children[i+1]

	switch {
	case len(left.recs) >= b.t:
		pred := b.maxRecord(left)
		n.recs[i] = pred
		b.remove(left, pred.Key)
	case len(right.recs) >= b.t:
		succ := b.minRecord(right)
		n.recs[i] = succ
		b.remove(right, succ.Key)
	default:
		b.mergeChildren(n, i)
		b.remove(left, key)
	}
}

func (b *BTree) minRecord(n *btreeNode) FileRecord {
	for !n.leaf() {
		n = n.children[0]
	}
	return n.recs[0]
}

func (b *BTree) maxRecord(n *btreeNode) FileRecord {
	for !n.leaf() {
		n = n.children[len(n.children)-1]
	}
	return n.recs[len(n.recs)-1]
}

// fillChild grows children[i] of n to at least t records by borrowing from
// a sibling or merging with one. Returns the position of the child that now
// covers the original key range.
func (b *BTree) fillChild(n *btreeNode, i int) int {
	if i > 0 && len(n.children[i-1].recs) >= b.t {
		b.borrowFromLeft(n, i)
		return i
	}
	if i < len(n.recs) && len(n.children[i+1].recs) >= b.t {
		b.borrowFromRight(n, i)
		return i
	}
	if i < len(n.recs) {
		b.mergeChildren(n, i)
		return i
	}
	b.mergeChildren(n, i-1)
	return i - 1
}

// borrowFromLeft rotates the greatest record of the left sibling through
// the parent into children[i].
func (b *BTree) borrowFromLeft(n *btreeNode, i int) {
	child, sib := n.children[i], n.children[i-1]

	child.recs = append(child.recs, FileRecord{})
	copy(child.recs[1:], child.recs)
	child.recs[0] = n.recs[i-1]

	n.recs[i-1] = sib.recs[len(sib.recs)-1]
	sib.recs = sib.recs[:len(sib.recs)-1]

	if !child.leaf() {
		child.children = append(child.children, nil)
		copy(child.children[1:], child.children)
		child.children[0] = sib.children[len(sib.children)-1]
		sib.children = sib.children[:len(sib.children)-1]
	}
}

// borrowFromRight rotates the least record of the right sibling through
// the parent into children[i].
func (b *BTree) borrowFromRight(n *btreeNode, i int) {
	child, sib := n.children[i], n.children[i+1]

	child.recs = append(child.recs, n.recs[i])
	n.recs[i] = sib.recs[0]
	sib.recs = append(sib.recs[:0], sib.recs[1:]...)

	if !child.leaf() {
		child.children = append(child.children, sib.children[0])
		sib.children = append(sib.children[:0], sib.children[1:]...)
	}
}

// mergeChildren folds the separator record at i and children[i+1] into
// children[i].
func (b *BTree) mergeChildren(n *btreeNode, i int) {
	left, right := n.children[i], n.children[i+1]
	y.AssertTrue(len(left.recs)+len(right.recs)+1 <= b.maxRecs())

	left.recs = append(left.recs, n.recs[i])
	left.recs = append(left.recs, right.recs...)
	left.children = append(left.children, right.children...)

	n.recs = append(n.recs[:i], n.recs[i+1:]...)
	n.children = append(n.children[:i+1], n.children[i+2:]...)
}

func (b *BTree) Ascend(fn func(rec FileRecord) bool) {
	b.ascend(b.root, fn)
}

func (b *BTree) ascend(n *btreeNode, fn func(rec FileRecord) bool) bool {
	if n == nil {
		return true
	}
	for i, rec := range n.recs {
		if !n.leaf() && !b.ascend(n.children[i], fn) {
			return false
		}
		if !fn(rec) {
			return false
		}
	}
	if !n.leaf() {
		return b.ascend(n.children[len(n.children)-1], fn)
	}
	return true
}

func (b *BTree) Iter() Iterator {
	it := &btreeIter{root: b.root}
	it.descendLeft(b.root)
	it.normalize()
	return it
}

type btreeFrame struct {
	n   *btreeNode
	idx int // next record of n to emit
}

type btreeIter struct {
	root  *btreeNode
	stack []btreeFrame
}

func (it *btreeIter) descendLeft(n *btreeNode) {
	for n != nil {
		it.stack = append(it.stack, btreeFrame{n: n})
		if n.leaf() {
			return
		}
		n = n.children[0]
	}
}

// normalize pops frames whose records are exhausted so that the top frame,
// if any, points at the next record in order.
func (it *btreeIter) normalize() {
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]
		if top.idx < len(top.n.recs) {
			return
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
}

func (it *btreeIter) Valid() bool {
	return len(it.stack) > 0
}

func (it *btreeIter) Item() FileRecord {
	top := it.stack[len(it.stack)-1]
	return top.n.recs[top.idx]
}

func (it *btreeIter) Next() {
	if !it.Valid() {
		return
	}
	top := &it.stack[len(it.stack)-1]
	emitted := top.idx
	top.idx++
	if !top.n.leaf() {
		it.descendLeft(top.n.children[emitted+1])
	}
	it.normalize()
}

func (it *btreeIter) Seek(key rdcommon.ID) {
	it.stack = it.stack[:0]
	n := it.root
	for n != nil {
		i := n.lowerBound(key)
		it.stack = append(it.stack, btreeFrame{n: n, idx: i})
		if n.leaf() {
			break
		}
		n = n.children[i]
	}
	it.normalize()
}
