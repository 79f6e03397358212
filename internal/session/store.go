// Package session persists the single local session token, the source
// of truth for "is a user logged in" on this device.
package session

import "context"

// Store holds at most one session token (the logged-in user id).
// An empty token means no session; that is a normal state, not an error.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
