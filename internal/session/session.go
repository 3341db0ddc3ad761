package session

import (
	"context"
	"errors"
)

// Roles the upstream auth service issues.
const (
	RoleCustomer  = "customer"
	RoleOrganizer = "event_organizer"
)

// ErrNoSession is returned when no authenticated session is available.
var ErrNoSession = errors.New("session: not authenticated")

// Session describes an authenticated caller: who they are, which role is
// active and the raw bearer credential to forward upstream. The service never
// issues or refreshes credentials, it only carries them.
type Session struct {
	UserID string
	Role   string
	Token  string
}

// IsCustomer reports whether the active role permits purchases.
func (s Session) IsCustomer() bool {
	return s.Role == RoleCustomer
}

// TokenSource supplies the session for outbound calls. Injecting it keeps the
// checkout workflow testable with fake sessions instead of ambient storage.
type TokenSource interface {
	Session(ctx context.Context) (Session, error)
}

// StaticSource returns a fixed session. Useful for tests and CLI tooling.
type StaticSource struct {
	S Session
}

// Session implements TokenSource.
func (s StaticSource) Session(ctx context.Context) (Session, error) {
	_ = ctx
	if s.S.Token == "" {
		return Session{}, ErrNoSession
	}
	return s.S, nil
}

// ContextSource reads the session previously attached to the request context
// by Middleware. It is the TokenSource the HTTP handlers hand to the workflow.
type ContextSource struct{}

// Session implements TokenSource.
func (ContextSource) Session(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}

type ctxKey struct{}

// WithSession stores the session on the provided context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session from the context if present.
func FromContext(ctx context.Context) (Session, bool) {
	v := ctx.Value(ctxKey{})
	if v == nil {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
