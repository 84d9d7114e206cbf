package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials stores the serialized session cookie set under one keyring
// account. The zero value uses the application defaults.
type Credentials struct {
	Service string
	User    string
}

func (c Credentials) service() string {
	if c.Service == "" {
		return constants.AppName
	}
	return c.Service
}

func (c Credentials) user() string {
	if c.User == "" {
		return constants.DefaultKeyringUser
	}
	return c.User
}

// Get retrieves the stored session secret.
// Returns ErrNotFound if nothing is stored.
func (c Credentials) Get() (string, error) {
	secret, err := keyring.Get(c.service(), c.user())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores the session secret, replacing any previous value.
func (c Credentials) Set(secret string) error {
	if secret == "" {
		return errors.New("session secret cannot be empty")
	}
	if err := keyring.Set(c.service(), c.user(), secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the session secret. Deleting a missing entry returns ErrNotFound.
func (c Credentials) Delete() error {
	err := keyring.Delete(c.service(), c.user())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
