// Package auth resolves the shopper behind a request.
package auth

import (
	"context"
	"net/http"
	"strings"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"

	// LoginURL is where unauthenticated shoppers are sent before checkout.
	LoginURL = "/login"
)

// Identity is an authenticated shopper.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Authenticator resolves the identity of a request.
type Authenticator interface {
	Identify(r *http.Request) (Identity, bool)
}

// HeaderAuthenticator trusts identity headers set by the fronting gateway.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Identify(r *http.Request) (Identity, bool) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return Identity{}, false
	}
	return Identity{UserID: id, Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail))}, true
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
