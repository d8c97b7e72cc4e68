// Package state defines the normalized configuration document shared by all
// pipeline stages.
//
// A Document is a nested map shaped as domain -> tenant -> class -> instance
// -> property bag. Scalar tenant properties may sit directly under the tenant
// level. The declaration normalizer and the config fetcher each produce an
// independently owned Document; the reconciler reads two of them and builds a
// third. Nothing in this package performs I/O.
//
// Values inside a Document are restricted to the shapes produced by JSON and
// YAML decoding: map[string]any, []any, string, bool, float64/int and nil.
// DeepCopy and DeepEqual rely on that restriction.
package state
