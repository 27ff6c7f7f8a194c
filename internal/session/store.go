package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"almacen-front/internal/logger"
)

// DefaultAutoLogoutMargin is how long before the token's expiry the
// one-shot auto-logout fires.
const DefaultAutoLogoutMargin = 2 * time.Second

type state struct {
	Token      string `json:"token,omitempty"`
	SessionKey string `json:"session_key"`
}

// Store owns the kiosk's single operator session: the bearer token and the
// durable random session key that tags this client's pending work on the
// backend. Both persist across restarts in a JSON state file. The session
// key is generated once and never regenerated.
type Store struct {
	mu         sync.Mutex
	path       string
	token      string
	sessionKey string

	skew   time.Duration
	margin time.Duration
	timer  *time.Timer
	now    func() time.Time

	onChange []func(token string)
	onExpire []func()
}

// NewStore loads (or creates) the state file at path. A persisted token
// that is already expired is cleared immediately instead of scheduling a
// timer with a negative delay.
func NewStore(path string, skew, margin time.Duration) (*Store, error) {
	if skew <= 0 {
		skew = DefaultSkew
	}
	if margin <= 0 {
		margin = DefaultAutoLogoutMargin
	}

	s := &Store{
		path:   path,
		skew:   skew,
		margin: margin,
		now:    time.Now,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	if s.token != "" {
		if isExpiredAt(s.token, s.skew, s.now()) {
			s.token = ""
			if err := s.persist(); err != nil {
				return nil, err
			}
			logger.Info("Discarded expired session token on startup")
		} else {
			s.scheduleAutoLogout()
		}
	}

	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read session state: %w", err)
		}
	} else {
		var st state
		if err := json.Unmarshal(data, &st); err == nil {
			s.token = st.Token
			s.sessionKey = st.SessionKey
		} else {
			logger.Warn("Session state file is corrupt, starting fresh", zap.Error(err))
		}
	}

	if s.sessionKey == "" {
		s.sessionKey = uuid.NewString()
		return s.persist()
	}
	return nil
}

func (s *Store) persist() error {
	data, err := json.Marshal(state{Token: s.token, SessionKey: s.sessionKey})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session state dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SessionKey returns the stable client identifier.
func (s *Store) SessionKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionKey
}

// Valid reports whether a non-expired token is held.
func (s *Store) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && !isExpiredAt(s.token, s.skew, s.now())
}

// Login persists the token and (re)schedules the auto-logout.
func (s *Store) Login(token string) error {
	s.mu.Lock()
	s.token = token
	err := s.persist()
	s.scheduleAutoLogout()
	changed := append([]func(string){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range changed {
		fn(token)
	}
	return err
}

// Logout cancels any pending auto-logout and clears the persisted token.
// Calling it while already logged out only cancels timers.
func (s *Store) Logout() {
	s.mu.Lock()
	s.cancelTimer()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	if err := s.persist(); err != nil {
		logger.Error("Failed to persist logout", zap.Error(err))
	}
	changed := append([]func(string){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range changed {
		fn("")
	}
}

// ExpireIfStale runs the logout path when the held token has expired,
// and reports whether it fired. The auto-logout timer and the watchdog
// both funnel through here so expiry behaves identically on each path.
// The token is checked and cleared under one lock so a login landing
// between the two can never be swept away by a concurrent tick.
func (s *Store) ExpireIfStale() bool {
	s.mu.Lock()
	if s.token == "" || !isExpiredAt(s.token, s.skew, s.now()) {
		s.mu.Unlock()
		return false
	}

	s.cancelTimer()
	s.token = ""
	if err := s.persist(); err != nil {
		logger.Error("Failed to persist expiry logout", zap.Error(err))
	}
	changed := append([]func(string){}, s.onChange...)
	expire := append([]func(){}, s.onExpire...)
	s.mu.Unlock()

	logger.Info("Session token expired, logging out")
	for _, fn := range changed {
		fn("")
	}
	for _, fn := range expire {
		fn()
	}
	return true
}

// OnChange registers a callback invoked after every login/logout with the
// new token value.
func (s *Store) OnChange(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// OnExpire registers a callback invoked when the session ends by expiry
// rather than by explicit logout. The front panel uses it to redirect to
// the login screen.
func (s *Store) OnExpire(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = append(s.onExpire, fn)
}

// Close cancels any pending timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimer()
}

// scheduleAutoLogout arms the one-shot expiry timer, replacing any pending
// one. At most one timer exists per session. Caller holds s.mu.
func (s *Store) scheduleAutoLogout() {
	s.cancelTimer()

	exp, ok := ExpiryTime(s.token)
	if !ok {
		return
	}

	delay := exp.Sub(s.now()) - s.margin
	if delay < 0 {
		delay = 0
	}
	s.timer = time.AfterFunc(delay, func() {
		s.ExpireIfStale()
	})
}

func (s *Store) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
