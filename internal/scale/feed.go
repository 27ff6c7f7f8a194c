// Package scale maintains a live connection to the weight-reporting device
// and exposes the latest reading plus connection state. Frames arrive as
// JSON objects carrying a numeric weight and an optional unit; anything
// else is dropped without touching the current reading.
package scale

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"almacen-front/internal/logger"
)

// Reading is the last known scale state, replaced wholesale on every valid
// frame. It is never persisted.
type Reading struct {
	Weight    float64 `json:"weight"`
	Unit      string  `json:"unit"`
	Connected bool    `json:"connected"`
	Error     string  `json:"error,omitempty"`
}

// Feed owns at most one live device connection at a time. Superseding the
// address positively tears down the previous socket before dialing, so a
// stale read loop can never mutate current state.
type Feed struct {
	mu      sync.Mutex
	reading Reading

	gen  uint64
	conn *websocket.Conn
}

// NewFeed returns a disconnected feed with a zero reading in defaultUnit.
func NewFeed(defaultUnit string) *Feed {
	if defaultUnit == "" {
		defaultUnit = "kg"
	}
	return &Feed{reading: Reading{Unit: defaultUnit}}
}

// Reading returns a snapshot of the current state.
func (f *Feed) Reading() Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reading
}

// SetAddress replaces the device endpoint. An empty address tears down any
// connection and reports disconnected, leaving the last reading untouched.
func (f *Feed) SetAddress(wsURL string) {
	f.mu.Lock()
	f.teardown()
	gen := f.gen
	f.mu.Unlock()

	if wsURL == "" {
		return
	}

	go f.dial(gen, wsURL)
}

// Close tears down the current connection, if any.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teardown()
}

// teardown closes the live socket and bumps the generation so every
// callback belonging to it becomes a no-op. Caller holds f.mu.
func (f *Feed) teardown() {
	f.gen++
	if f.conn != nil {
		_ = f.conn.Close()
		f.conn = nil
	}
	f.reading.Connected = false
}

func (f *Feed) dial(gen uint64, wsURL string) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		f.reading.Connected = false
		f.reading.Error = err.Error()
		f.mu.Unlock()
		logger.Warn("Scale connection failed", zap.String("url", wsURL), zap.Error(err))
		return
	}
	f.conn = conn
	f.reading.Connected = true
	f.reading.Error = ""
	f.mu.Unlock()

	logger.Info("Scale connected", zap.String("url", wsURL))
	f.readLoop(gen, conn)
}

func (f *Feed) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			f.mu.Lock()
			if gen == f.gen {
				f.reading.Connected = false
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					f.reading.Error = err.Error()
				}
				f.conn = nil
			}
			f.mu.Unlock()
			return
		}

		f.mu.Lock()
		if gen != f.gen {
			f.mu.Unlock()
			return
		}
		f.applyFrame(payload)
		f.mu.Unlock()
	}
}

// applyFrame parses one device frame. Frames without a numeric weight are
// silently ignored. Caller holds f.mu.
func (f *Feed) applyFrame(payload []byte) {
	var frame map[string]interface{}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return
	}

	weight, ok := frame["weight"].(float64)
	if !ok {
		return
	}

	unit := f.reading.Unit
	if u, ok := frame["unit"].(string); ok && u != "" {
		unit = u
	}
	f.reading = Reading{Weight: weight, Unit: unit, Connected: true}
}

// markConnected and markDisconnected let alternative sources (MQTT) drive
// the same state transitions the websocket loop performs.
func (f *Feed) markConnected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading.Connected = true
	f.reading.Error = ""
}

func (f *Feed) markDisconnected(errText string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading.Connected = false
	if errText != "" {
		f.reading.Error = errText
	}
}

func (f *Feed) apply(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyFrame(payload)
}
