// Package vault stores encrypted catalog snapshots off the scanning machine.
package vault

import "errors"

// ErrSnapshotNotFound is returned when a host has no stored snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found for host")

// snapshotName is the object name of a host's snapshot inside a vault.
func snapshotName(hostID string) string {
	return hostID + ".catalog.age"
}
