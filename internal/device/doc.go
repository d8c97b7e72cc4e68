// Package device defines the boundary to the managed device.
//
// The pipeline never talks to a device directly; it consumes a Reader (one
// read operation per configuration path, with query-style property
// selection) and an IdentityProvider (stable machine identity and hostname
// used for snapshot keying and path-token resolution). Transport, auth and
// retry policy live behind the Reader implementation.
//
// The Resolver substitutes the small token vocabulary embedded in retrieval
// path templates ({{hostName}}, {{deviceName}}) before a read is issued.
package device
