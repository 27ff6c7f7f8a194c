package session

import (
	"sync"
	"time"
)

// DefaultWatchdogInterval is the recurring validity check period.
const DefaultWatchdogInterval = time.Minute

// Watchdog re-checks token validity on a fixed interval, independently of
// the store's one-shot timer. It is the safety net against clock drift,
// missed timers or process suspension. It reads the store's current token
// on every tick, so a token change needs no re-arming.
type Watchdog struct {
	store    *Store
	interval time.Duration

	mu   sync.Mutex
	done chan struct{}
}

func NewWatchdog(store *Store, interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	return &Watchdog{store: store, interval: interval}
}

// Start launches the checking loop. Starting an already-running watchdog
// is a no-op.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return
	}
	w.done = make(chan struct{})

	go w.run(w.done)
}

func (w *Watchdog) run(done chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.store.ExpireIfStale()
		case <-done:
			return
		}
	}
}

// Stop cancels the loop. Safe to call more than once.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == nil {
		return
	}
	close(w.done)
	w.done = nil
}
