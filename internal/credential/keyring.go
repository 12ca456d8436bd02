package credential

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "tracker"

// operatorKey holds the handle of the operator who last logged in.
const operatorKey = "operator-handle"

// ErrNoOperator is returned when no login has been remembered.
var ErrNoOperator = errors.New("no remembered operator")

// Vault remembers the logged-in operator between invocations.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a Vault backed by the system keyring, falling back to an
// encrypted file under configDir.
func Open(configDir string) (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(configDir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("tracker-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// NewVault wraps an existing keyring, e.g. keyring.NewArrayKeyring in tests.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Remember stores handle as the current operator.
func (v *Vault) Remember(handle string) error {
	err := v.ring.Set(keyring.Item{
		Key:   operatorKey,
		Data:  []byte(handle),
		Label: "tracker operator",
	})
	if err != nil {
		return fmt.Errorf("remembering operator %q: %w", handle, err)
	}
	return nil
}

// Operator returns the remembered handle or ErrNoOperator.
func (v *Vault) Operator() (string, error) {
	item, err := v.ring.Get(operatorKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoOperator
	}
	if err != nil {
		return "", fmt.Errorf("reading remembered operator: %w", err)
	}
	if len(item.Data) == 0 {
		return "", ErrNoOperator
	}
	return string(item.Data), nil
}

// Forget removes the remembered operator. Forgetting twice is not an error.
func (v *Vault) Forget() error {
	err := v.ring.Remove(operatorKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("forgetting operator: %w", err)
	}
	return nil
}
