package testutil

import "slices"

// ModelEvent is one recorded invalidation. Threshold < 0 means full.
type ModelEvent struct {
	Generation uint64
	Threshold  int
}

// Model is a plain-slice reference for a vector of ints. It keeps every
// invalidation event forever, so IsValid is a direct scan with no shortcuts.
type Model struct {
	values []int
	gen    uint64
	events []ModelEvent
}

// NewModel creates a model holding values.
func NewModel(values ...int) *Model {
	return &Model{values: slices.Clone(values)}
}

// Len returns the number of elements.
func (m *Model) Len() int { return len(m.values) }

// Values returns a copy of the elements.
func (m *Model) Values() []int { return slices.Clone(m.values) }

// At returns element i.
func (m *Model) At(i int) int { return m.values[i] }

// Generation returns the number of recorded invalidations.
func (m *Model) Generation() uint64 { return m.gen }

// Events returns every recorded invalidation, oldest first.
func (m *Model) Events() []ModelEvent { return slices.Clone(m.events) }

// IsValid reports whether an iterator at pos captured at generation
// captured survived every later event.
func (m *Model) IsValid(captured uint64, pos int) bool {
	if captured > m.gen {
		return false
	}
	for _, e := range m.events {
		if e.Generation <= captured {
			continue
		}
		if e.Threshold < 0 || pos >= e.Threshold {
			return false
		}
	}
	return true
}

func (m *Model) partial(threshold int) {
	if threshold <= 0 {
		m.full()
		return
	}
	m.gen++
	m.events = append(m.events, ModelEvent{Generation: m.gen, Threshold: threshold})
}

func (m *Model) full() {
	m.gen++
	m.events = append(m.events, ModelEvent{Generation: m.gen, Threshold: -1})
}

// PushBack appends v.
func (m *Model) PushBack(v int) { m.values = append(m.values, v) }

// PopBack removes the last element. It reports false when empty.
func (m *Model) PopBack() (int, bool) {
	n := len(m.values)
	if n == 0 {
		return 0, false
	}
	v := m.values[n-1]
	m.values = m.values[:n-1]
	m.partial(n - 1)
	return v, true
}

// Set overwrites element i.
func (m *Model) Set(i, v int) { m.values[i] = v }

// Insert places v at pos.
func (m *Model) Insert(pos, v int) {
	m.values = slices.Insert(m.values, pos, v)
	m.partial(pos)
}

// Erase removes the element at pos.
func (m *Model) Erase(pos int) {
	m.values = slices.Delete(m.values, pos, pos+1)
	m.partial(pos)
}

// EraseRange removes [first, last). An empty range records nothing.
func (m *Model) EraseRange(first, last int) {
	if first == last {
		return
	}
	m.values = slices.Delete(m.values, first, last)
	m.partial(first)
}

// EraseUnsorted moves the last element into pos and drops the tail.
func (m *Model) EraseUnsorted(pos int) {
	last := len(m.values) - 1
	m.values[pos] = m.values[last]
	m.values = m.values[:last]
	m.partial(pos)
}

// EraseSet removes the given sorted distinct positions.
func (m *Model) EraseSet(positions []uint32) {
	if len(positions) == 0 {
		return
	}
	out := m.values[:0]
	next := 0
	for i, v := range m.values {
		if next < len(positions) && int(positions[next]) == i {
			next++
			continue
		}
		out = append(out, v)
	}
	m.values = out
	m.partial(int(positions[0]))
}

// Resize sets the length to n, filling new slots with fill.
func (m *Model) Resize(n, fill int) {
	cur := len(m.values)
	switch {
	case n < cur:
		m.values = m.values[:n]
		m.partial(n)
	case n > cur:
		for i := cur; i < n; i++ {
			m.values = append(m.values, fill)
		}
	}
}

// Clear removes every element.
func (m *Model) Clear() {
	m.values = m.values[:0]
	m.full()
}
