package scanner

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCooldown is how long repeats of the same payload are
// suppressed after a successful read.
const DefaultCooldown = 1200 * time.Millisecond

// Pipeline debounces raw decode events from a Decoder and forwards
// each distinct payload to a single consumer callback.  While the
// cooldown window is open, events carrying the same text as the last
// accepted read are discarded, so a camera producing many frames per
// second cannot fire the consumer repeatedly for one badge held in
// front of it.
type Pipeline struct {
	dec      Decoder
	consume  func(text string)
	cooldown time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	locked   bool
	lastText string
	timer    *time.Timer
}

// NewPipeline wires a decoder to a consumer.  cooldown <= 0 selects
// DefaultCooldown.  The consumer is invoked synchronously from the
// decoder's event goroutine.
func NewPipeline(dec Decoder, consume func(text string), cooldown time.Duration, log zerolog.Logger) *Pipeline {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Pipeline{dec: dec, consume: consume, cooldown: cooldown, log: log}
}

// Start begins camera sampling.  Start failures from the decoder are
// returned verbatim so callers can distinguish the error kinds
// declared in this package.
func (p *Pipeline) Start() error {
	return p.dec.Start(p.onDecode)
}

// Stop halts camera sampling and cancels any pending unlock timer.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.locked = false
	p.mu.Unlock()
	return p.dec.Stop()
}

// onDecode handles one raw decode event.  Duplicate events inside the
// cooldown window are dropped; a distinct payload always goes
// through, even while locked, so scanning a second badge immediately
// after the first still works.
func (p *Pipeline) onDecode(text string) {
	p.mu.Lock()
	if p.locked && text == p.lastText {
		p.mu.Unlock()
		return
	}
	p.lastText = text
	p.locked = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.cooldown, p.unlock)
	p.mu.Unlock()

	p.dec.Pause()
	p.invokeConsumer(text)
}

// invokeConsumer runs the downstream callback.  A panicking consumer
// must not wedge the scanner, so the unlock timer keeps running and
// the panic is logged instead of propagated.
func (p *Pipeline) invokeConsumer(text string) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("scan consumer panicked")
		}
	}()
	p.consume(text)
}

// unlock releases the debounce lock after the cooldown and resumes
// the decoder.
func (p *Pipeline) unlock() {
	p.mu.Lock()
	p.locked = false
	p.timer = nil
	p.mu.Unlock()
	p.dec.Resume()
}
