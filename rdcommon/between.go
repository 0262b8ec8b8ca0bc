package rdcommon

// Between reports whether x lies on the open-closed cyclic arc (lo, hi].
// When lo >= hi the arc wraps through zero; lo == hi covers the full ring.
// Both the key-responsibility rule and finger hop selection reduce to this
// one predicate.
func Between(x, lo, hi ID) bool {
	if lo < hi {
		return x > lo && x <= hi
	}
	return x > lo || x <= hi
}
