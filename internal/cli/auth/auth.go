// Package auth stores the CLI's session tokens in the OS keychain. It
// implements the same Store contract as the web gate's backends; the CLI
// serves a single local visitor, so the sid argument is ignored.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/halosani-dev/halosani/internal/session"
)

const (
	service = "halosani-cli"
)

// KeyringStore is a session.Store backed by the OS keychain/credential
// manager. Tokens are keyed per server host so pointing the CLI at a
// different deployment never leaks a token across environments.
type KeyringStore struct {
	host string
}

// NewKeyringStore creates a store scoped to one server host.
func NewKeyringStore(host string) *KeyringStore {
	return &KeyringStore{host: host}
}

func (k *KeyringStore) key(role session.Role) string {
	return fmt.Sprintf("%s@%s", role.StorageKey(), k.host)
}

func (k *KeyringStore) Set(_ context.Context, _ string, role session.Role, value string) error {
	if err := keyring.Set(service, k.key(role), value); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *KeyringStore) Get(_ context.Context, _ string, role session.Role) (string, bool, error) {
	token, err := keyring.Get(service, k.key(role))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load token: %w", err)
	}
	return token, true, nil
}

func (k *KeyringStore) Clear(_ context.Context, _ string, role session.Role) error {
	if err := keyring.Delete(service, k.key(role)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already cleared
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
