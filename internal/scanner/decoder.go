// Package scanner decodes keystrokes from a wedge-type barcode reader. The
// reader emulates a keyboard: it emits the code's characters in a fast
// burst and terminates with Enter. Keystrokes slower than the inactivity
// window are judged to be human typing and discarded.
package scanner

import (
	"strings"
	"sync"
	"time"
)

// KeyEnter is the terminator keystroke, named as keyboard events name it.
const KeyEnter = "Enter"

// DefaultWindow is the inactivity window after which a partial buffer is
// discarded.
const DefaultWindow = 100 * time.Millisecond

type decoderState int

const (
	stateIdle decoderState = iota
	stateAccumulating
)

// Decoder turns a keystroke stream into discrete scan events. It holds two
// states: idle, and accumulating with a pending inactivity timer. Enter is
// the authoritative terminator; the timer only guards against leftover
// characters from an abandoned scan.
type Decoder struct {
	mu     sync.Mutex
	state  decoderState
	buf    strings.Builder
	window time.Duration
	onScan func(code string)

	timer  *time.Timer
	gen    uint64
	closed bool
}

// NewDecoder creates a decoder delivering complete codes to onScan.
func NewDecoder(onScan func(code string), window time.Duration) *Decoder {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Decoder{window: window, onScan: onScan}
}

// Key feeds one keystroke. Enter emits the trimmed buffer if non-empty;
// any other key appends and restarts the inactivity timer.
func (d *Decoder) Key(key string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	if key == KeyEnter {
		code := strings.TrimSpace(d.buf.String())
		d.reset()
		emit := d.onScan
		d.mu.Unlock()

		if code != "" && emit != nil {
			emit(code)
		}
		return
	}

	d.buf.WriteString(key)
	d.state = stateAccumulating
	d.restartTimer()
	d.mu.Unlock()
}

// restartTimer arms the inactivity timer, superseding any pending one.
// The generation counter keeps a stale fire from clearing a newer buffer.
// Caller holds d.mu.
func (d *Decoder) restartTimer() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.expire(gen)
	})
}

func (d *Decoder) expire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.state != stateAccumulating {
		return
	}
	d.reset()
}

// reset returns to idle, dropping the buffer and any pending timer.
// Caller holds d.mu.
func (d *Decoder) reset() {
	d.buf.Reset()
	d.state = stateIdle
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Close drops any pending buffer and ignores further keystrokes.
func (d *Decoder) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	d.closed = true
}
