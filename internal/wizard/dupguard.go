package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDupDebounce is how long the guard waits after the last
// keystroke in either name field before querying the backend.
const DefaultDupDebounce = 500 * time.Millisecond

// RegistrantLookup is the policy boundary of the duplicate check.
// The current rule is deliberately coarse: global uniqueness of the
// exact (first, last) pair across all registrants.  Scoping it by
// email or organization later only means swapping this
// implementation; the guard and the wizard stay untouched.
type RegistrantLookup interface {
	NameExists(ctx context.Context, firstName, lastName string) (bool, error)
}

// DupGuard runs the debounced asynchronous duplicate-entrant check
// while the Personal step is active.  A new check supersedes any
// in-flight one (last write wins on the flag), and editing either
// name field clears the flag immediately so the user is never blocked
// on a stale result.
type DupGuard struct {
	lookup   RegistrantLookup
	debounce time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	seq     uint64 // identifies the most recently scheduled check
	timer   *time.Timer
	flagged bool
	first   string
	last    string
}

// NewDupGuard builds a guard over the given lookup.  debounce <= 0
// selects DefaultDupDebounce.
func NewDupGuard(lookup RegistrantLookup, debounce time.Duration, log zerolog.Logger) *DupGuard {
	if debounce <= 0 {
		debounce = DefaultDupDebounce
	}
	return &DupGuard{lookup: lookup, debounce: debounce, log: log}
}

// NameEdited must be called on every change to either name field.  It
// optimistically clears the duplicate flag, invalidates any in-flight
// check, and (re)schedules a new one once both names are populated.
func (g *DupGuard) NameEdited(first, last string) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	g.mu.Lock()
	g.flagged = false
	g.first = first
	g.last = last
	g.seq++
	seq := g.seq
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if first == "" || last == "" {
		g.mu.Unlock()
		return
	}
	g.timer = time.AfterFunc(g.debounce, func() { g.run(seq, first, last) })
	g.mu.Unlock()
}

// run performs the actual backend query.  Its result is applied only
// when no later edit superseded it.
func (g *DupGuard) run(seq uint64, first, last string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := g.lookup.NameExists(ctx, first, last)
	if err != nil {
		// A failed lookup never blocks the user; the submission path
		// re-checks inside the insert transaction anyway.
		g.log.Warn().Err(err).Msg("duplicate check failed")
		return
	}
	g.mu.Lock()
	if g.seq == seq {
		g.flagged = exists
	}
	g.mu.Unlock()
}

// Flagged reports whether the current name pair is known to collide
// with an existing registrant.
func (g *DupGuard) Flagged() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flagged
}

// CheckNow bypasses debouncing and queries the lookup synchronously.
// The wizard uses it right before submission and the duplicate-check
// endpoint uses it directly.
func (g *DupGuard) CheckNow(ctx context.Context, first, last string) (bool, error) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" || last == "" {
		return false, nil
	}
	exists, err := g.lookup.NameExists(ctx, first, last)
	if err != nil {
		return false, err
	}
	g.mu.Lock()
	if first == g.first && last == g.last {
		g.flagged = exists
	}
	g.mu.Unlock()
	return exists, nil
}

// Stop cancels any pending debounce timer.
func (g *DupGuard) Stop() {
	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.mu.Unlock()
}
