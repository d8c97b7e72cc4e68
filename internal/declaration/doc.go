// Package declaration parses and normalizes the declarative configuration
// document submitted by the operator.
//
// # Document shape
//
// A declaration is a tree: the root carries a schema version and one or more
// tenant nodes (objects whose class discriminator is "Tenant"). Each tenant
// holds containers (objects with their own class discriminator naming a
// configuration domain, e.g. "System" or "Network"), and each container holds
// named properties. A property is either a scalar/array or a typed
// sub-instance: an object carrying its own class discriminator.
//
// # Normalization
//
// Normalize flattens that tree into a state.Document grouped by domain, then
// tenant, then class, then instance name. Class discriminators are consumed
// during grouping and never appear in a leaf property bag. Instance names are
// synthesized as "{container}_{property}" except under the System domain,
// where the raw property key is used unqualified.
//
// Two distinct containers producing the same synthesized instance name is an
// error, not a silent overwrite.
//
// Normalization performs no I/O and fails atomically: a malformed declaration
// yields an error and no partial document.
package declaration
