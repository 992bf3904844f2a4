package cryptox

import "golang.org/x/crypto/argon2"

// DeriveStorageKey derives a 32-byte AES key from the device secret and salt
// using argon2id. Parameters follow the argon2 package recommendations.
func DeriveStorageKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}
