package token

// Hideset is the set of macro names forbidden from re-triggering
// expansion on a token. It is a persistent cons list: Union and Add build
// new cells in front of shared suffixes and never mutate their inputs, so
// sibling expansions that share a prefix stay independent.
//
// The algorithm and the union/intersection rules follow Dave Prosser's
// macro-expansion algorithm, the basis for the C standard's wording.
type Hideset struct {
	next *Hideset
	name string
}

// NewHideset returns a one-element hideset.
func NewHideset(name string) *Hideset {
	return &Hideset{name: name}
}

// Contains reports whether name is in the set. A nil receiver is the
// empty set.
func (hs *Hideset) Contains(name string) bool {
	for ; hs != nil; hs = hs.next {
		if hs.name == name {
			return true
		}
	}
	return false
}

// Union returns hs ∪ other. Cells of hs are copied; other is shared as
// the suffix.
func (hs *Hideset) Union(other *Hideset) *Hideset {
	var head Hideset
	cur := &head
	for ; hs != nil; hs = hs.next {
		cur.next = NewHideset(hs.name)
		cur = cur.next
	}
	cur.next = other
	return head.next
}

// Intersect returns a fresh set holding the names present in both sets.
func (hs *Hideset) Intersect(other *Hideset) *Hideset {
	var head Hideset
	cur := &head
	for ; hs != nil; hs = hs.next {
		if other.Contains(hs.name) {
			cur.next = NewHideset(hs.name)
			cur = cur.next
		}
	}
	return head.next
}

// Names returns the set contents in list order, for tests and debugging.
func (hs *Hideset) Names() []string {
	var out []string
	for ; hs != nil; hs = hs.next {
		out = append(out, hs.name)
	}
	return out
}
