package tokens

import (
	"context"
	"fmt"

	"github.com/meetdeck/meetdeck-cli/internal/cryptox"
)

// EncryptedStore wraps another Store and seals values with AES-GCM so bearer
// tokens never hit disk in plaintext. The key comes from the device secret
// file via cryptox.DeriveStorageKey.
type EncryptedStore struct {
	inner Store
	key   []byte
}

func NewEncryptedStore(inner Store, key []byte) *EncryptedStore {
	return &EncryptedStore{inner: inner, key: key}
}

func (e *EncryptedStore) Access(ctx context.Context) (string, error) {
	v, err := e.inner.Access(ctx)
	if err != nil {
		return "", err
	}
	return e.open(v)
}

func (e *EncryptedStore) Refresh(ctx context.Context) (string, error) {
	v, err := e.inner.Refresh(ctx)
	if err != nil {
		return "", err
	}
	return e.open(v)
}

func (e *EncryptedStore) SetPair(ctx context.Context, access, refresh string) error {
	sealedAccess, err := cryptox.Seal([]byte(access), e.key)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	sealedRefresh, err := cryptox.Seal([]byte(refresh), e.key)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}
	return e.inner.SetPair(ctx, string(sealedAccess), string(sealedRefresh))
}

func (e *EncryptedStore) Clear(ctx context.Context) error {
	return e.inner.Clear(ctx)
}

func (e *EncryptedStore) open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	plain, err := cryptox.Open([]byte(sealed), e.key)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed token: %w", err)
	}
	return string(plain), nil
}
