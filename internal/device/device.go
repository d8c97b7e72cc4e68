package device

import "context"

// Reader issues a single read against the managed device.
//
// The returned value is the decoded response body: an object for single
// resources, an array of objects for collections. properties, when non-empty,
// restricts the response to the named properties so large collections are not
// over-fetched. Implementations must be safe for concurrent use; the fetcher
// fans out many reads at once.
type Reader interface {
	List(ctx context.Context, path string, properties []string) (any, error)
}

// Identity is the stable identity of a managed device.
type Identity struct {
	// MachineID keys the snapshot store. It must not change across
	// reboots or renames.
	MachineID string

	// HostName resolves the {{hostName}} path token.
	HostName string

	// DeviceName resolves the {{deviceName}} path token (the device's name
	// within its cluster, which may differ from the hostname).
	DeviceName string
}

// IdentityProvider exposes the identity of the device a reconciliation run
// targets.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, error)
}

// StaticIdentity is an IdentityProvider returning a fixed identity. Used by
// the CLI (identity flags) and by tests.
type StaticIdentity Identity

func (s StaticIdentity) Identity(ctx context.Context) (Identity, error) {
	return Identity(s), nil
}
