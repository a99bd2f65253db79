package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jjenkins/revera/internal/obs"
)

type session struct {
	flow     *Flow
	lastSeen time.Time
}

// Sessions keeps one Flow per browser session and closes flows that have
// been idle for longer than the configured timeout.
type Sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	newFlow func() *Flow
	idle    time.Duration
	max     int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewSessions creates a session registry. newFlow builds the flow for a new session.
func NewSessions(newFlow func() *Flow, idle time.Duration) *Sessions {
	return &Sessions{
		items:   make(map[string]*session),
		newFlow: newFlow,
		idle:    idle,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// SetLimit caps the number of open sessions. When the registry is full the
// least recently seen session is closed to make room. Zero means no cap.
func (s *Sessions) SetLimit(n int) {
	s.mu.Lock()
	s.max = n
	s.mu.Unlock()
}

// Get returns the flow for id, creating a session when id is empty or
// unknown. The returned id must be handed back to the browser.
func (s *Sessions) Get(id string) (string, *Flow) {
	s.mu.Lock()
	if sess, ok := s.items[id]; ok && id != "" {
		sess.lastSeen = s.now()
		s.mu.Unlock()
		return id, sess.flow
	}

	var evicted *Flow
	if s.max > 0 && len(s.items) >= s.max {
		evicted = s.evictOldest()
	}
	id = uuid.NewString()
	flow := s.newFlow()
	s.items[id] = &session{flow: flow, lastSeen: s.now()}
	s.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		obs.Logger.Warn("auth_session_evicted", "limit", s.max)
	}
	return id, flow
}

// Lookup returns the flow for an existing session without creating one
func (s *Sessions) Lookup(id string) (*Flow, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.flow, true
}

// Draft returns a fresh flow that is not registered. It holds no
// resources until an image is attached, so it can be dropped freely.
func (s *Sessions) Draft() *Flow {
	return s.newFlow()
}

// evictOldest removes the least recently seen session; s.mu must be held
func (s *Sessions) evictOldest() *Flow {
	var oldestID string
	var oldest *session
	for id, sess := range s.items {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, sess
		}
	}
	if oldest == nil {
		return nil
	}
	delete(s.items, oldestID)
	return oldest.flow
}

// End closes and forgets the session's flow
func (s *Sessions) End(id string) {
	s.mu.Lock()
	sess, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if ok {
		sess.flow.Close()
	}
}

// Len is the number of open sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep closes sessions idle longer than the timeout and returns how many
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	var expired []*Flow
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess.flow)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, f := range expired {
		f.Close()
	}
	return len(expired)
}

// StartJanitor sweeps on every interval until Stop is called
func (s *Sessions) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					obs.Logger.Info("auth_sessions_expired", "count", n)
				}
			}
		}
	}()
}

// Stop ends the janitor and closes every open flow
func (s *Sessions) Stop() {
	s.once.Do(func() { close(s.stop) })

	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range items {
		sess.flow.Close()
	}
}
