package places

// IDSet is an insertion-ordered set of place IDs.
type IDSet struct {
	ids  []string
	seen map[string]struct{}
}

func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add inserts id and reports whether it was new. Empty IDs are ignored.
func (s *IDSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// AddAll merges other into s and returns how many IDs were new.
func (s *IDSet) AddAll(other *IDSet) int {
	if other == nil {
		return 0
	}
	n := 0
	for _, id := range other.ids {
		if s.Add(id) {
			n++
		}
	}
	return n
}

func (s *IDSet) Len() int { return len(s.ids) }

// IDs returns the IDs in insertion order.
func (s *IDSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
