package auth

import "sync"

// SignInPath is where the guard sends unauthenticated visitors.
const SignInPath = "/auth/signin"

// Decision is what a guarded view should do right now.
type Decision struct {
	State State
	User  *User
	// RedirectTo is set once the session is known to be missing.
	RedirectTo string
}

// Allowed reports whether the protected content may be shown.
func (d Decision) Allowed() bool {
	return d.State == StateAuthenticated
}

// Guard gates a protected view. While mounted it follows the session holder
// and reports checking, authenticated or unauthenticated to its view.
type Guard struct {
	sessions *Sessions

	mu          sync.Mutex
	mounted     bool
	decision    Decision
	onChange    func(Decision)
	unsubscribe func()
}

func NewGuard(sessions *Sessions) *Guard {
	return &Guard{
		sessions: sessions,
		decision: Decision{State: StateChecking},
	}
}

// Mount reports the current decision and keeps reporting until Unmount.
// onChange runs under the guard's lock and must not call back into it.
func (g *Guard) Mount(onChange func(Decision)) {
	g.mu.Lock()
	if g.mounted {
		g.mu.Unlock()
		return
	}
	g.mounted = true
	g.onChange = onChange
	g.mu.Unlock()

	unsubscribe := g.sessions.Subscribe(g.observe)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	g.observe(g.sessions.Current())
}

// Unmount detaches the guard. No callback runs after it returns.
func (g *Guard) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted {
		return
	}
	g.mounted = false
	g.onChange = nil
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

func (g *Guard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

func (g *Guard) observe(session Session) {
	decision := decide(session)

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted {
		return
	}
	g.decision = decision
	if g.onChange != nil {
		g.onChange(decision)
	}
}

func decide(session Session) Decision {
	switch session.State {
	case StateAuthenticated:
		if session.User == nil {
			return Decision{State: StateUnauthenticated, RedirectTo: SignInPath}
		}
		return Decision{State: StateAuthenticated, User: session.User}
	case StateUnauthenticated:
		return Decision{State: StateUnauthenticated, RedirectTo: SignInPath}
	default:
		return Decision{State: StateChecking}
	}
}
