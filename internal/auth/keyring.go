package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"radar/internal/logging"
)

const (
	// KeyringService is the service name in the OS keychain
	KeyringService = "radar"

	// KeyringGitHubTokenItem is the key for the GitHub token
	KeyringGitHubTokenItem = "github-token"
)

// Keyring stores the GitHub token in the OS keychain.
type Keyring struct {
	logger *logging.Logger
}

// NewKeyring creates a keyring accessor. A nil logger discards output.
func NewKeyring(logger *logging.Logger) *Keyring {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Keyring{logger: logger.With(map[string]interface{}{"component": "keyring"})}
}

// GetGitHubToken returns the stored token, or "" if none is stored.
func (k *Keyring) GetGitHubToken() (string, error) {
	token, err := keyring.Get(KeyringService, KeyringGitHubTokenItem)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		k.logger.Debug("Keyring read failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return token, nil
}

// SetGitHubToken stores token in the OS keychain.
func (k *Keyring) SetGitHubToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := keyring.Set(KeyringService, KeyringGitHubTokenItem, token); err != nil {
		k.logger.Error("Failed to save token to keychain", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	k.logger.Info("GitHub token saved to keychain", map[string]interface{}{"service": KeyringService})
	return nil
}

// DeleteGitHubToken removes the stored token. Deleting a missing token is not an error.
func (k *Keyring) DeleteGitHubToken() error {
	err := keyring.Delete(KeyringService, KeyringGitHubTokenItem)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to delete from OS keychain: %w", err)
}
