package scanner

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDecoder drives the pipeline by hand instead of sampling a
// camera.  It records pause/resume calls so tests can assert the
// decoder lifecycle.
type fakeDecoder struct {
	mu       sync.Mutex
	onDecode func(string)
	paused   int
	resumed  int
	startErr error
}

func (f *fakeDecoder) Start(cb func(string)) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.onDecode = cb
	return nil
}
func (f *fakeDecoder) Stop() error { return nil }
func (f *fakeDecoder) Pause()      { f.mu.Lock(); f.paused++; f.mu.Unlock() }
func (f *fakeDecoder) Resume()     { f.mu.Lock(); f.resumed++; f.mu.Unlock() }

func (f *fakeDecoder) emit(text string) { f.onDecode(text) }

func TestPipelineSuppressesRepeatsWithinCooldown(t *testing.T) {
	dec := &fakeDecoder{}
	var got []string
	p := NewPipeline(dec, func(text string) { got = append(got, text) }, 200*time.Millisecond, zerolog.Nop())
	require.NoError(t, p.Start())

	// Same payload arriving many times in one scan session must reach
	// the consumer exactly once.
	for i := 0; i < 5; i++ {
		dec.emit("CCI-A1B2C3")
	}
	assert.Equal(t, []string{"CCI-A1B2C3"}, got)
	assert.Equal(t, 1, dec.paused)
}

func TestPipelineAcceptsDistinctPayloadWhileLocked(t *testing.T) {
	dec := &fakeDecoder{}
	var got []string
	p := NewPipeline(dec, func(text string) { got = append(got, text) }, time.Minute, zerolog.Nop())
	require.NoError(t, p.Start())

	dec.emit("CCI-A1B2C3")
	dec.emit("CCI-D4E5F6") // a second badge shown right after the first
	dec.emit("CCI-D4E5F6") // repeat of the second is suppressed

	assert.Equal(t, []string{"CCI-A1B2C3", "CCI-D4E5F6"}, got)
}

func TestPipelineUnlocksAfterCooldown(t *testing.T) {
	dec := &fakeDecoder{}
	var got []string
	p := NewPipeline(dec, func(text string) { got = append(got, text) }, 30*time.Millisecond, zerolog.Nop())
	require.NoError(t, p.Start())

	dec.emit("CCI-A1B2C3")
	time.Sleep(80 * time.Millisecond)
	dec.emit("CCI-A1B2C3") // same badge scanned again in a later session

	assert.Equal(t, []string{"CCI-A1B2C3", "CCI-A1B2C3"}, got)
	dec.mu.Lock()
	defer dec.mu.Unlock()
	assert.Equal(t, 2, dec.paused)
	assert.Equal(t, 1, dec.resumed)
}

func TestPipelineSurvivesPanickingConsumer(t *testing.T) {
	dec := &fakeDecoder{}
	calls := 0
	p := NewPipeline(dec, func(string) {
		calls++
		if calls == 1 {
			panic("downstream blew up")
		}
	}, 20*time.Millisecond, zerolog.Nop())
	require.NoError(t, p.Start())

	assert.NotPanics(t, func() { dec.emit("CCI-A1B2C3") })
	time.Sleep(60 * time.Millisecond)
	// The lock was released despite the panic and the scanner keeps working.
	dec.emit("CCI-A1B2C3")
	assert.Equal(t, 2, calls)
}

func TestPipelineStartFailurePassesThrough(t *testing.T) {
	dec := &fakeDecoder{startErr: ErrCameraBusy}
	p := NewPipeline(dec, func(string) {}, 0, zerolog.Nop())
	assert.ErrorIs(t, p.Start(), ErrCameraBusy)
}
