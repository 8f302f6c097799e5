package auth

import "sync"

// State is where a session stands from the guard's point of view.
type State int

const (
	StateChecking State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is one observation of the identity service.
type Session struct {
	State State
	User  *User
}

// Sessions holds the current session and notifies observers of every change.
// It starts in StateChecking until the first observation arrives.
type Sessions struct {
	mu        sync.Mutex
	current   Session
	nextID    int
	observers map[int]func(Session)
}

func NewSessions() *Sessions {
	return &Sessions{
		current:   Session{State: StateChecking},
		observers: make(map[int]func(Session)),
	}
}

func (s *Sessions) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SignedIn records an authenticated user.
func (s *Sessions) SignedIn(user User) {
	s.set(Session{State: StateAuthenticated, User: &user})
}

// SignedOut records that nobody is signed in.
func (s *Sessions) SignedOut() {
	s.set(Session{State: StateUnauthenticated})
}

func (s *Sessions) set(session Session) {
	s.mu.Lock()
	s.current = session
	observers := make([]func(Session), 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	s.mu.Unlock()

	for _, observer := range observers {
		observer(session)
	}
}

// Subscribe calls fn on every later change. The returned function detaches it.
func (s *Sessions) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Sessions) observerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}
