package testutil

import (
	"findv/internal/catalog"
	"findv/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() catalog.Vault {
	return vault.NewMemoryVault("test-vault")
}
