// Package fetcher retrieves the current configuration of a managed device
// and normalizes it into the same document shape the declaration normalizer
// produces.
//
// # Descriptors
//
// Retrieval is driven entirely by static configuration item descriptors: one
// per device-state category, naming the retrieval path template, the target
// class, the properties of interest (with renames, boolean mappings,
// defaults and transforms), reference properties that require a secondary
// read, ignore rules and per-descriptor flags. Descriptors are loaded once
// per process and treated as immutable.
//
// # Pipeline
//
// A fetch runs in two concurrent stages: all descriptor reads fan out at
// once, join, and then all reference reads fan out and join. Reads within a
// stage are independent; cross-descriptor dependencies exist only through
// the reference split. Any read failure aborts the whole fetch; no partial
// current state is returned or snapshotted.
//
// After the document is assembled the fetcher reconciles the device's
// original-state snapshot: first observation becomes the baseline, and new
// dynamic-scope values are added to it without ever overwriting recorded
// ones.
package fetcher
