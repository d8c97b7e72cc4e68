// Package reconciler compares desired configuration against current device
// configuration and produces the document of changes to apply.
//
// # Trust semantics
//
// The comparison is asymmetric. Classes outside the configured set of
// authoritative classes pass through from the desired document verbatim: they
// are always applied exactly as declared and their current value is never
// consulted. Classes inside the set are diffed structurally; any difference
// marks the class, the working copy of the current state is converged to the
// desired state, and the whole converged subtree is emitted. Whole-subtree
// emission (rather than per-field patches) avoids reconstructing partial
// device objects whose fields are interdependent.
//
// # Ownership
//
// Reconcile never mutates its inputs. Both documents are deep-copied before
// the diff runs and the merged document is built fresh; callers may reuse
// their inputs afterwards.
package reconciler
