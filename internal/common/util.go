package common

import "crypto/rand"

// GenerateRandByteArray returns size cryptographically random bytes.
func GenerateRandByteArray(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WipeByteArray overwrites the slice contents with zeros. Use it to clear
// passwords and other secrets before they go out of scope.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
