package relations

// idSet is an insertion-ordered set of ids.
type idSet struct {
	index map[string]int
	ids   []string
}

func newIDSet() *idSet {
	return &idSet{index: make(map[string]int)}
}

func (s *idSet) add(id string) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *idSet) remove(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	delete(s.index, id)
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}

func (s *idSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) len() int {
	return len(s.ids)
}

func (s *idSet) list() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
