package validity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Fresh(t *testing.T) {
	tr := New()
	assert.Equal(t, uint64(0), tr.Generation())
	assert.True(t, tr.IsValid(0, 0))
	assert.True(t, tr.IsValid(0, 1<<20))
	assert.Empty(t, tr.Events())
}

func TestTracker_BumpPartial(t *testing.T) {
	tr := New()
	g := tr.Generation()

	tr.BumpPartial(3)

	assert.Equal(t, uint64(1), tr.Generation())
	assert.True(t, tr.IsValid(g, 0))
	assert.True(t, tr.IsValid(g, 2))
	assert.False(t, tr.IsValid(g, 3))
	assert.False(t, tr.IsValid(g, 7))

	// Snapshots taken after the event are unaffected by it.
	assert.True(t, tr.IsValid(tr.Generation(), 7))
}

func TestTracker_BumpFull(t *testing.T) {
	tr := New()
	g := tr.Generation()
	tr.BumpPartial(5)
	tr.BumpFull()

	assert.False(t, tr.IsValid(g, 0))
	assert.False(t, tr.IsValid(1, 0))
	assert.True(t, tr.IsValid(tr.Generation(), 0))
	assert.Empty(t, tr.Events(), "full invalidation truncates the log")
}

func TestTracker_NonPositiveThresholdIsFull(t *testing.T) {
	tr := New()
	tr.BumpPartial(0)
	assert.False(t, tr.IsValid(0, 0))
	assert.Empty(t, tr.Events())

	g := tr.Generation()
	tr.BumpPartial(-4)
	assert.False(t, tr.IsValid(g, 0))
}

func TestTracker_ConjunctionOverSuffix(t *testing.T) {
	tr := New()
	g0 := tr.Generation()

	tr.BumpPartial(6) // deep erase first
	g1 := tr.Generation()
	tr.BumpPartial(3) // then a shallow one
	tr.BumpPartial(9) // a deeper one must not resurrect anything

	assert.True(t, tr.IsValid(g0, 2))
	assert.False(t, tr.IsValid(g0, 3))
	assert.False(t, tr.IsValid(g0, 5))
	assert.False(t, tr.IsValid(g0, 8))

	assert.True(t, tr.IsValid(g1, 2))
	assert.False(t, tr.IsValid(g1, 4))
}

func TestTracker_FutureGenerationIsInvalid(t *testing.T) {
	tr := New()
	assert.False(t, tr.IsValid(5, 0))
}

func TestTracker_MinThreshold(t *testing.T) {
	tr := New()
	assert.Equal(t, -1, tr.MinThreshold(0))

	tr.BumpPartial(8)
	tr.BumpPartial(4)
	tr.BumpPartial(6)
	assert.Equal(t, 4, tr.MinThreshold(0))
	assert.Equal(t, 4, tr.MinThreshold(1))
	assert.Equal(t, 6, tr.MinThreshold(2))

	tr.BumpFull()
	assert.Equal(t, 0, tr.MinThreshold(3))
	assert.Equal(t, -1, tr.MinThreshold(tr.Generation()))
}

func TestTracker_LogStaysBounded(t *testing.T) {
	tr := New()
	g0 := tr.Generation()

	for range 100_000 {
		tr.BumpPartial(3)
	}
	assert.Len(t, tr.Events(), 1)
	assert.False(t, tr.IsValid(g0, 3))
	assert.True(t, tr.IsValid(g0, 2))

	// Stack usage: pop at n-1, push, pop again.
	tr = New()
	base := tr.Generation()
	for i := range 10_000 {
		tr.BumpPartial(50 + i%2)
	}
	assert.LessOrEqual(t, len(tr.Events()), 2)
	assert.True(t, tr.IsValid(base, 49))
	assert.False(t, tr.IsValid(base, 50))
}

func TestTracker_EventsIsCopy(t *testing.T) {
	tr := New()
	tr.BumpPartial(2)
	ev := tr.Events()
	require.Len(t, ev, 1)
	ev[0].Threshold = 100
	assert.Equal(t, 2, tr.Events()[0].Threshold)
}

// TestTracker_MatchesBruteForce checks the tracker against a naive model that
// keeps every event forever.
func TestTracker_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	type naiveEvent struct {
		gen       uint64
		threshold int // 0 = full
	}

	for round := 0; round < 50; round++ {
		tr := New()
		var log []naiveEvent

		for step := 0; step < 40; step++ {
			if rng.Intn(8) == 0 {
				tr.BumpFull()
				log = append(log, naiveEvent{gen: tr.Generation()})
			} else {
				th := 1 + rng.Intn(20)
				tr.BumpPartial(th)
				log = append(log, naiveEvent{gen: tr.Generation(), threshold: th})
			}

			events := tr.Events()
			for i := 1; i < len(events); i++ {
				require.Less(t, events[i-1].Threshold, events[i].Threshold)
			}
			require.LessOrEqual(t, len(events), 20)

			for check := 0; check < 10; check++ {
				captured := uint64(rng.Intn(int(tr.Generation()) + 1))
				pos := rng.Intn(25)

				want := true
				lowest := -1
				for _, ev := range log {
					if ev.gen <= captured {
						continue
					}
					if pos >= ev.threshold {
						want = false
					}
					if lowest < 0 || ev.threshold < lowest {
						lowest = ev.threshold
					}
				}
				require.Equal(t, want, tr.IsValid(captured, pos),
					"round=%d step=%d captured=%d pos=%d", round, step, captured, pos)
				require.Equal(t, lowest, tr.MinThreshold(captured),
					"round=%d step=%d captured=%d", round, step, captured)
			}
		}
	}
}
