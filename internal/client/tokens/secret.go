package tokens

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/meetdeck/meetdeck-cli/internal/common"
	"github.com/meetdeck/meetdeck-cli/internal/cryptox"
)

const (
	secretSaltLen = 16
	secretLen     = 32
)

// LoadStorageKey reads the device secret file at path (creating it with
// fresh random material on first run) and derives the storage key from it.
// The file holds salt||secret and is only readable by the owner.
func LoadStorageKey(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = createSecretFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load device secret: %w", err)
	}
	if len(raw) != secretSaltLen+secretLen {
		return nil, fmt.Errorf("device secret file %s is corrupt (%d bytes)", path, len(raw))
	}

	return cryptox.DeriveStorageKey(raw[secretSaltLen:], raw[:secretSaltLen]), nil
}

func createSecretFile(path string) ([]byte, error) {
	raw, err := common.GenerateRandByteArray(secretSaltLen + secretLen)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return nil, err
	}
	return raw, nil
}
