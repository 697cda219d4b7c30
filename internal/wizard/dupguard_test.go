package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zerologNop() zerolog.Logger { return zerolog.Nop() }

// stubLookupAlwaysExists reports every name pair as taken.
type stubLookupAlwaysExists struct{}

func (stubLookupAlwaysExists) NameExists(context.Context, string, string) (bool, error) {
	return true, nil
}

// recordingLookup counts queries and answers from a fixed set.
type recordingLookup struct {
	mu    sync.Mutex
	calls int
	taken map[string]bool
	block chan struct{} // when non-nil, NameExists waits on it
}

func (r *recordingLookup) NameExists(_ context.Context, first, last string) (bool, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.taken[first+" "+last], nil
}

func (r *recordingLookup) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func waitForFlag(t *testing.T, g *DupGuard) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if g.Flagged() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("duplicate flag was never raised")
}

func TestDupGuardDebouncesKeystrokes(t *testing.T) {
	lookup := &recordingLookup{taken: map[string]bool{"Somchai Jaidee": true}}
	g := NewDupGuard(lookup, 40*time.Millisecond, zerologNop())
	defer g.Stop()

	// Typing letter by letter: only the final pair may trigger a query.
	for _, first := range []string{"S", "So", "Som", "Somchai"} {
		g.NameEdited(first, "Jaidee")
	}
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, lookup.callCount())
	assert.True(t, g.Flagged())
}

func TestDupGuardEditClearsFlagImmediately(t *testing.T) {
	lookup := &recordingLookup{taken: map[string]bool{"Somchai Jaidee": true}}
	g := NewDupGuard(lookup, 5*time.Millisecond, zerologNop())
	defer g.Stop()

	g.NameEdited("Somchai", "Jaidee")
	waitForFlag(t, g)

	// Changing the last name clears the flag before the re-check lands.
	g.NameEdited("Somchai", "Jaidee2")
	assert.False(t, g.Flagged())
	time.Sleep(30 * time.Millisecond)
	assert.False(t, g.Flagged())
}

func TestDupGuardLaterEditSupersedesInFlightCheck(t *testing.T) {
	lookup := &recordingLookup{
		taken: map[string]bool{"Somchai Jaidee": true},
		block: make(chan struct{}),
	}
	g := NewDupGuard(lookup, time.Millisecond, zerologNop())
	defer g.Stop()

	g.NameEdited("Somchai", "Jaidee")
	time.Sleep(10 * time.Millisecond) // the check is now in flight, blocked

	// The user keeps typing; the stale result must be discarded.
	g.NameEdited("Somchai", "Jaidee Jr")
	close(lookup.block)
	time.Sleep(30 * time.Millisecond)
	assert.False(t, g.Flagged())
}

func TestDupGuardIncompletePairNeverQueries(t *testing.T) {
	lookup := &recordingLookup{taken: map[string]bool{}}
	g := NewDupGuard(lookup, time.Millisecond, zerologNop())
	defer g.Stop()

	g.NameEdited("Somchai", "")
	g.NameEdited("", "Jaidee")
	g.NameEdited("  ", " ")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, lookup.callCount())
}

func TestDupGuardCheckNow(t *testing.T) {
	lookup := &recordingLookup{taken: map[string]bool{"Somchai Jaidee": true}}
	g := NewDupGuard(lookup, time.Hour, zerologNop())

	exists, err := g.CheckNow(context.Background(), "Somchai", "Jaidee")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = g.CheckNow(context.Background(), "Malee", "Jaidee")
	require.NoError(t, err)
	assert.False(t, exists)
}
