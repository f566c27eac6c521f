package analyzer

// Session tracks which class names have already been produced. One session
// spans a whole batch so a class discovered in an earlier document is never
// emitted again. A Session is not safe for concurrent use.
type Session struct {
	processed map[string]struct{}
	order     []string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{processed: make(map[string]struct{})}
}

// Seen reports whether name has already been claimed.
func (s *Session) Seen(name string) bool {
	_, ok := s.processed[name]
	return ok
}

// Claim records name and reports whether it was free.
func (s *Session) Claim(name string) bool {
	if s.Seen(name) {
		return false
	}
	s.processed[name] = struct{}{}
	s.order = append(s.order, name)
	return true
}

// Names returns the claimed names in claim order.
func (s *Session) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}
