// Package keyring keeps secrets (storage connection strings, the API signing
// secret) in the OS keyring instead of config files.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitline/internal/constants"
)

// Entry names under the habitline service
const (
	StorageEntry   = constants.DefaultKeyringUser
	JWTSecretEntry = "api-jwt-secret"
)

var (
	ErrNotFound           = errors.New("secret not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrUnknownEntry       = errors.New("unknown keyring entry")
)

// Entries lists the names accepted by Get, Set and Delete
var Entries = []string{StorageEntry, JWTSecretEntry}

func checkEntry(name string) error {
	for _, e := range Entries {
		if e == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownEntry, name)
}

func Get(name string) (string, error) {
	if err := checkEntry(name); err != nil {
		return "", err
	}
	secret, err := keyring.Get(constants.AppName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func Set(name, secret string) error {
	if err := checkEntry(name); err != nil {
		return err
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(constants.AppName, name, secret); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	return nil
}

func Delete(name string) error {
	if err := checkEntry(name); err != nil {
		return err
	}
	if err := keyring.Delete(constants.AppName, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete secret from keyring: %w", err)
	}
	return nil
}

// GetConnectionString returns the stored storage connection string
func GetConnectionString() (string, error) { return Get(StorageEntry) }

func SetConnectionString(connStr string) error { return Set(StorageEntry, connStr) }

// IsAvailable is a best-effort probe: a not-found read still means the keyring works.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
