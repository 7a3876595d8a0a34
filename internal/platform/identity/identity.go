// Package identity persists the install's device and user tokens. The
// tokens are generated once and reused for the lifetime of the
// installation; they are not authenticated and provide no security
// boundary, only collision avoidance between devices.
package identity

import (
	"fmt"
	"os"
	"path/filepath"

	sonic "github.com/bytedance/sonic"
	idgen "github.com/bringolino/bringolino/internal/platform/id"
)

const fileMode = 0o600

// Identity is the locally persisted pair of opaque tokens.
type Identity struct {
	DeviceID string `json:"device_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
}

// Load reads the identity file, generating and persisting fresh tokens when
// the file is missing or unreadable. A write failure still returns a usable
// in-memory identity; the tokens are then regenerated on next start.
func Load(path string, gen *idgen.RandomGenerator) (Identity, error) {
	if gen == nil {
		gen = idgen.NewRandomGenerator()
	}

	if data, err := os.ReadFile(path); err == nil {
		var ident Identity
		if err := sonic.Unmarshal(data, &ident); err == nil && ident.DeviceID != "" && ident.UserID != "" {
			return ident, nil
		}
	}

	deviceID, err := gen.NewToken("device")
	if err != nil {
		return Identity{}, fmt.Errorf("generate device id: %w", err)
	}
	userID, err := gen.NewToken("user")
	if err != nil {
		return Identity{}, fmt.Errorf("generate user id: %w", err)
	}

	ident := Identity{DeviceID: deviceID, UserID: userID}
	if err := save(path, ident); err != nil {
		return ident, fmt.Errorf("persist identity: %w", err)
	}

	return ident, nil
}

// DefaultPath places the identity file under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "bringolino_identity.json")
	}

	return filepath.Join(dir, "bringolino", "identity.json")
}

func save(path string, ident Identity) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}

	data, err := sonic.MarshalIndent(ident, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("write identity file: %w", err)
	}

	return nil
}
