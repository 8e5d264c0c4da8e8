package service

import "sync"

// Session is the logged-in caller. Alerts queue messages for the caller
// to show at its next opportunity.
type Session struct {
	Username string
	IsAdmin  bool

	mu     sync.Mutex
	alerts []string
}

func NewSession(username string, isAdmin bool) *Session {
	return &Session{Username: username, IsAdmin: isAdmin}
}

// Alert queues a message
func (s *Session) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, msg)
}

// Alerts returns and clears the pending messages
func (s *Session) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.alerts
	s.alerts = nil
	return out
}
