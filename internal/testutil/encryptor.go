package testutil

import (
	"findv/internal/catalog"
	"findv/internal/encryption"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() catalog.Encryptor {
	return encryption.NewTestEncryptor()
}
