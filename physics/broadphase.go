package physics

import "github.com/phanxgames/grove"

// Entry is one collidable object tracked by the broad phase.
type Entry struct {
	Obj    *grove.Object
	Area   *Area
	Shape  grove.Shape // world-space shape, refreshed by the system
	Bounds grove.Rect  // world-space AABB of Shape
}

func (e *Entry) maxX() float64 { return e.Bounds.X + e.Bounds.Width }

// SweepAndPrune is a broad phase that keeps entries sorted by the left edge
// of their bounding box. Entries move little between steps, so the order is
// restored with an insertion sort that is linear on nearly sorted input.
type SweepAndPrune struct {
	entries []*Entry
	active  []*Entry
	index   map[*grove.Object]*Entry
}

// NewSweepAndPrune returns an empty broad phase.
func NewSweepAndPrune() *SweepAndPrune {
	return &SweepAndPrune{index: make(map[*grove.Object]*Entry)}
}

// Insert adds e. Inserting an object twice replaces its entry.
func (s *SweepAndPrune) Insert(e *Entry) {
	if old, ok := s.index[e.Obj]; ok {
		*old = *e
		return
	}
	s.index[e.Obj] = e
	s.entries = append(s.entries, e)
}

// Remove drops the entry for o and reports whether it was present.
func (s *SweepAndPrune) Remove(o *grove.Object) bool {
	e, ok := s.index[o]
	if !ok {
		return false
	}
	delete(s.index, o)
	for i, x := range s.entries {
		if x == e {
			copy(s.entries[i:], s.entries[i+1:])
			s.entries[len(s.entries)-1] = nil
			s.entries = s.entries[:len(s.entries)-1]
			break
		}
	}
	return true
}

// Get returns the entry for o, or nil.
func (s *SweepAndPrune) Get(o *grove.Object) *Entry { return s.index[o] }

// Len returns the number of entries.
func (s *SweepAndPrune) Len() int { return len(s.entries) }

// Entries returns entries in sweep order. The returned slice MUST NOT be mutated.
func (s *SweepAndPrune) Entries() []*Entry { return s.entries }

// Sort restores the sweep order after bounds changed.
func (s *SweepAndPrune) Sort() {
	es := s.entries
	for i := 1; i < len(es); i++ {
		e := es[i]
		j := i - 1
		for j >= 0 && es[j].Bounds.X > e.Bounds.X {
			es[j+1] = es[j]
			j--
		}
		es[j+1] = e
	}
}

// Pairs sorts the entries and calls fn for every pair whose bounds overlap
// on both axes. The first argument is always the entry earlier in sweep
// order. fn must not insert or remove entries.
func (s *SweepAndPrune) Pairs(fn func(a, b *Entry)) {
	s.Sort()
	s.active = s.active[:0]
	for _, e := range s.entries {
		minX := e.Bounds.X
		keep := s.active[:0]
		for _, a := range s.active {
			if a.maxX() >= minX {
				keep = append(keep, a)
			}
		}
		clear(s.active[len(keep):])
		s.active = keep
		for _, a := range s.active {
			if a.Bounds.Y <= e.Bounds.Y+e.Bounds.Height && e.Bounds.Y <= a.Bounds.Y+a.Bounds.Height {
				fn(a, e)
			}
		}
		s.active = append(s.active, e)
	}
	clear(s.active)
	s.active = s.active[:0]
}

// Query calls fn for every entry whose bounds intersect r.
func (s *SweepAndPrune) Query(r grove.Rect, fn func(e *Entry)) {
	s.Sort()
	for _, e := range s.entries {
		if e.Bounds.X > r.X+r.Width {
			break
		}
		if e.Bounds.Intersects(r) {
			fn(e)
		}
	}
}
