// Package session is the single source of truth for "is this role
// authenticated". It holds at most one opaque bearer token per role per
// visitor, keyed by the same storage keys the HaloSani web client has always
// used: user_token and admin_token. Token presence is the only signal of
// authentication; no expiry or signature check happens at this layer.
package session

import "context"

// Role identifies which token and which login route apply to a request.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Storage keys, one per role.
const (
	UserTokenKey  = "user_token"
	AdminTokenKey = "admin_token"
)

// StorageKey returns the persistent key under which the role's token lives.
func (r Role) StorageKey() string {
	if r == RoleAdmin {
		return AdminTokenKey
	}
	return UserTokenKey
}

// LoginPath returns the login route visitors are redirected to when the
// role's token is absent.
func (r Role) LoginPath() string {
	if r == RoleAdmin {
		return "/admin/login"
	}
	return "/user/login"
}

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Store abstracts the persistent key-value storage holding session tokens.
// sid identifies the visitor; implementations that serve a single visitor
// (such as the CLI keyring store) may ignore it.
//
// Set is last-writer-wins, Get is a pure read with no side effects, and
// Clear is idempotent. Implementations must not expire tokens on their own:
// invalidation is driven by logout and by upstream 401 responses.
type Store interface {
	Set(ctx context.Context, sid string, role Role, value string) error
	Get(ctx context.Context, sid string, role Role) (string, bool, error)
	Clear(ctx context.Context, sid string, role Role) error
}
