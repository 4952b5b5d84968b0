package optimistic

// Mode is the selection state.
type Mode int

const (
	Idle Mode = iota
	Selecting
)

func (m Mode) String() string {
	if m == Selecting {
		return "selecting"
	}
	return "idle"
}

// Selection tracks ids picked for a bulk action. Selecting starts with the
// first id and ends when the last one is deselected or the action is
// submitted. The zero value is idle.
type Selection[K comparable] struct {
	ids   []K
	index map[K]int
}

// Mode reports idle or selecting.
func (s *Selection[K]) Mode() Mode {
	if len(s.ids) == 0 {
		return Idle
	}
	return Selecting
}

// Active reports whether a selection is in progress.
func (s *Selection[K]) Active() bool {
	return s.Mode() == Selecting
}

// Begin enters selecting with id picked, as a long press does.
func (s *Selection[K]) Begin(id K) {
	if !s.Has(id) {
		s.add(id)
	}
}

// Toggle picks or unpicks id. Unpicking the last id returns to idle.
func (s *Selection[K]) Toggle(id K) {
	if s.Has(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// Has reports whether id is picked.
func (s *Selection[K]) Has(id K) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of picked ids.
func (s *Selection[K]) Len() int {
	return len(s.ids)
}

// IDs returns the picked ids in pick order.
func (s *Selection[K]) IDs() []K {
	out := make([]K, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clear returns to idle.
func (s *Selection[K]) Clear() {
	s.ids = nil
	s.index = nil
}

// Submit returns the picked ids and returns to idle.
func (s *Selection[K]) Submit() []K {
	ids := s.IDs()
	s.Clear()
	return ids
}

func (s *Selection[K]) add(id K) {
	if s.index == nil {
		s.index = make(map[K]int)
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *Selection[K]) remove(id K) {
	i := s.index[id]
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}
