package catalog

import "io"

// Vault stores encrypted catalog snapshots away from the scanning machine.
// Snapshots are keyed by host ID; each host keeps only its latest snapshot.
type Vault interface {
	// PutSnapshot replaces the host's snapshot. size is the number of bytes
	// that will be read from r. version is stored alongside for ordering checks.
	PutSnapshot(hostID string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the host's snapshot to w.
	GetSnapshot(hostID string, w io.Writer) error

	// SnapshotVersion returns the stored version, or 0 when there is none.
	SnapshotVersion(hostID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
