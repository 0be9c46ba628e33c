package validity

// Event records that positions >= Threshold became unreliable at Generation.
type Event struct {
	Generation uint64
	Threshold  int
}

// Tracker holds the generation counter and the invalidation log of a single
// container. It is not safe for concurrent use.
type Tracker struct {
	generation uint64
	// fullGen is the generation of the most recent full invalidation.
	// Snapshots taken before it are invalid no matter their position.
	fullGen uint64
	events  []Event
}

// New creates a Tracker at generation 0.
func New() *Tracker {
	return &Tracker{}
}

// Generation returns the current generation.
func (t *Tracker) Generation() uint64 {
	return t.generation
}

// BumpFull invalidates every outstanding snapshot.
func (t *Tracker) BumpFull() {
	t.generation++
	t.fullGen = t.generation
	t.events = t.events[:0]
}

// BumpPartial invalidates snapshots at positions >= threshold.
// A threshold <= 0 is a full invalidation.
//
// Trailing events with a threshold >= threshold are dropped first: every
// snapshot they invalidate is also invalidated by the new event. Thresholds
// in the log are therefore strictly increasing, which bounds its length by
// the largest threshold.
func (t *Tracker) BumpPartial(threshold int) {
	if threshold <= 0 {
		t.BumpFull()
		return
	}
	t.generation++
	n := len(t.events)
	for n > 0 && t.events[n-1].Threshold >= threshold {
		n--
	}
	t.events = append(t.events[:n], Event{Generation: t.generation, Threshold: threshold})
}

// IsValid reports whether a snapshot captured at generation captured and
// pointing at pos survived every mutation since.
func (t *Tracker) IsValid(captured uint64, pos int) bool {
	if captured == t.generation {
		return true
	}
	if captured > t.generation || captured < t.fullGen {
		return false
	}
	for i := len(t.events) - 1; i >= 0; i-- {
		ev := t.events[i]
		if ev.Generation <= captured {
			break
		}
		if pos >= ev.Threshold {
			return false
		}
	}
	return true
}

// MinThreshold returns the lowest threshold recorded after captured, or -1
// when nothing was recorded. A full invalidation after captured yields 0.
func (t *Tracker) MinThreshold(captured uint64) int {
	if captured == t.generation {
		return -1
	}
	if captured < t.fullGen {
		return 0
	}
	lowest := -1
	for i := len(t.events) - 1; i >= 0; i-- {
		ev := t.events[i]
		if ev.Generation <= captured {
			break
		}
		if lowest < 0 || ev.Threshold < lowest {
			lowest = ev.Threshold
		}
	}
	return lowest
}

// Events returns a copy of the retained log, oldest first.
func (t *Tracker) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
