package reconciler

import (
	"rudder/internal/state"
	"rudder/pkg/logging"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Reconcile merges a desired class map against the current class map for one
// (domain, tenant) bucket. Keys of the maps are class names; truth is the set
// of classes this system is authoritative for.
//
// Classes outside truth are copied from desired verbatim. Classes inside
// truth appear in the result only when current and desired differ, and then
// as the entire converged subtree.
func Reconcile(desired, current map[string]any, truth sets.Set[string]) map[string]any {
	merged := make(map[string]any)

	desiredCopy := state.DeepCopyValue(desired).(map[string]any)
	currentCopy := state.DeepCopyValue(current).(map[string]any)

	for class, value := range desiredCopy {
		if !truth.Has(class) {
			merged[class] = value
		}
	}

	marked := sets.New[string]()
	for _, c := range diff(currentCopy, desiredCopy) {
		class := c.path[0]
		if !truth.Has(class) {
			continue
		}
		marked.Insert(class)
		applyChange(currentCopy, c)
	}

	for class := range marked {
		converged, exists := currentCopy[class]
		if !exists {
			// The class was deleted outright; nothing to emit.
			continue
		}
		merged[class] = copySubtree(converged)
	}

	if marked.Len() > 0 {
		logging.Debug("Reconciler", "Classes with differences: %v", sets.List(marked))
	}
	return merged
}

// ReconcileDocument applies Reconcile across every (domain, tenant) bucket of
// two normalized documents.
func ReconcileDocument(desired, current state.Document, truth sets.Set[string]) state.Document {
	merged := state.Document{}

	for _, domain := range unionKeys(desired, current) {
		desiredDomain, _ := state.GetMap(desired, domain)
		currentDomain, _ := state.GetMap(current, domain)

		domainOut := map[string]any{}
		for _, tenant := range unionKeys(desiredDomain, currentDomain) {
			desiredBucket, _ := state.GetMap(desiredDomain, tenant)
			currentBucket, _ := state.GetMap(currentDomain, tenant)
			if desiredBucket == nil {
				desiredBucket = map[string]any{}
			}
			if currentBucket == nil {
				currentBucket = map[string]any{}
			}

			bucket := Reconcile(desiredBucket, currentBucket, truth)
			if len(bucket) > 0 {
				domainOut[tenant] = bucket
			}
		}
		if len(domainOut) > 0 {
			merged[domain] = domainOut
		}
	}
	return merged
}

// copySubtree emits a converged class value. Objects are shallow-copied key
// by key, arrays are taken wholesale and scalars by value; the source is a
// working copy owned by this package, so no deeper copy is needed.
func copySubtree(value any) any {
	object, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(object))
	for k, v := range object {
		out[k] = v
	}
	return out
}

func unionKeys(maps ...map[string]any) []string {
	keys := sets.New[string]()
	for _, m := range maps {
		for k := range m {
			keys.Insert(k)
		}
	}
	return sets.List(keys)
}
