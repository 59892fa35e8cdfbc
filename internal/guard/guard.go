// Package guard gates role-scoped views behind the session. It decides, it
// does not act: callers translate the Decision into a redirect, a loading
// placeholder, or the protected view.
package guard

import (
	"strings"

	"github.com/nexuscare/nexuscare-cli/internal/nexuscare"
)

// Decision is the outcome of a guard check, evaluated in this order:
// still-initializing sessions always yield DecisionLoading (never a
// redirect, so no unauthorized content flashes); anonymous sessions yield
// DecisionSignIn; a role outside the allow-list yields DecisionUnauthorized;
// otherwise DecisionAllow.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionSignIn
	DecisionUnauthorized
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionSignIn:
		return "sign-in"
	case DecisionUnauthorized:
		return "unauthorized"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Session is the slice of the session store the guard reads.
type Session interface {
	Initialized() bool
	User() *nexuscare.UserProfile
}

// Guard evaluates role allow-lists against a session. It is stateless:
// every Check re-reads the session, so state changes are picked up on the
// next evaluation.
type Guard struct {
	session Session
}

// New builds a Guard over the given session.
func New(session Session) *Guard {
	return &Guard{session: session}
}

// Check evaluates the allow-list. Role comparison is case-insensitive on
// both sides; the user's role is read via UserProfile.Role (user_type first,
// then the legacy role field).
func (g *Guard) Check(allowedRoles ...string) Decision {
	if !g.session.Initialized() {
		return DecisionLoading
	}

	user := g.session.User()
	if user == nil {
		return DecisionSignIn
	}

	role := user.Role()
	for _, allowed := range allowedRoles {
		if strings.ToLower(allowed) == role {
			return DecisionAllow
		}
	}
	return DecisionUnauthorized
}
