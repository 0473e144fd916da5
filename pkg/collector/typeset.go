package collector

// TypeIDSet is a set of type IDs that remembers insertion order, so that
// iterating it gives the same sequence on every run.
type TypeIDSet struct {
	seen  map[int64]struct{}
	order []int64
}

func NewTypeIDSet() *TypeIDSet {
	return &TypeIDSet{seen: make(map[int64]struct{})}
}

// Add inserts id and reports whether it was new.
func (s *TypeIDSet) Add(id int64) bool {
	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *TypeIDSet) Contains(id int64) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *TypeIDSet) Len() int {
	return len(s.order)
}

// IDs returns the members in first-insertion order. The caller owns the
// returned slice.
func (s *TypeIDSet) IDs() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}
