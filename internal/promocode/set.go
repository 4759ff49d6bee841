package promocode

import "jewelry-store/internal/model"

// mapSet implements Set. A later definition with the same name replaces
// the earlier one but keeps its position.
type mapSet struct {
	index map[string]int
	codes []model.PromoCode
}

// NewSet creates an empty set.
func NewSet(capacity int) *mapSet {
	return &mapSet{
		index: make(map[string]int, capacity),
		codes: make([]model.PromoCode, 0, capacity),
	}
}

// Get returns the definition with the given name.
func (s *mapSet) Get(name string) (model.PromoCode, bool) {
	i, ok := s.index[name]
	if !ok {
		return model.PromoCode{}, false
	}
	return s.codes[i], true
}

// Size returns the number of definitions in the set.
func (s *mapSet) Size() int {
	return len(s.codes)
}

// All returns the definitions in insertion order.
func (s *mapSet) All() []model.PromoCode {
	out := make([]model.PromoCode, len(s.codes))
	copy(out, s.codes)
	return out
}

// Add inserts or replaces a definition.
func (s *mapSet) Add(p model.PromoCode) {
	if i, ok := s.index[p.Name]; ok {
		s.codes[i] = p
		return
	}
	s.index[p.Name] = len(s.codes)
	s.codes = append(s.codes, p)
}

// Merge copies every definition of other into s.
func (s *mapSet) Merge(other Set) {
	for _, p := range other.All() {
		s.Add(p)
	}
}
