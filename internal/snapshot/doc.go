// Package snapshot persists the first-observed configuration baseline of a
// managed device.
//
// The fetcher captures the device's configuration the first time it sees a
// device identity and never overwrites recorded values afterwards; later
// reconciliation runs use the snapshot to restore settings a declaration
// stopped mentioning to their pre-management state rather than leaving them
// at whatever the last declaration set.
//
// Stores are keyed by machine identity. The pipeline reads a device's
// snapshot once at the start of a fetch and writes it at most once at the
// end; serializing runs per device is the caller's responsibility.
package snapshot
