// Package session extracts the caller's identity from a JWT bearer token.
// Handlers receive an explicit Session value; nothing downstream reads
// authentication state from anywhere else.
package session

import "context"

// Session is the authenticated caller, or the zero value for anonymous
// requests.
type Session struct {
	UserID        string
	Name          string
	IsAdmin       bool
	Authenticated bool
}

// Anonymous is the session for unauthenticated requests.
var Anonymous = Session{}

type ctxKey struct{}

// NewContext returns a context carrying the session.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session from the context, or Anonymous if none
// was set.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKey{}).(Session); ok {
		return s
	}
	return Anonymous
}
