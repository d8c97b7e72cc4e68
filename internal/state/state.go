package state

import (
	"reflect"
	"strings"
)

// Document is the normalized configuration shape: domain -> tenant -> class
// -> instance -> property bag.
type Document map[string]any

// DeepCopy returns a fully independent copy of the document. Callers may
// mutate the copy without affecting the original.
func (d Document) DeepCopy() Document {
	if d == nil {
		return nil
	}
	return Document(copyMap(d))
}

// DeepCopyValue copies an arbitrary document value (map, slice or scalar).
func DeepCopyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return copyMap(typed)
	case Document:
		return typed.DeepCopy()
	case []any:
		out := make([]any, len(typed))
		for i, elem := range typed {
			out[i] = DeepCopyValue(elem)
		}
		return out
	default:
		// Scalars are immutable.
		return v
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = DeepCopyValue(v)
	}
	return out
}

// DeepEqual reports whether two document values are structurally equal.
func DeepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Get walks the path through nested maps and returns the value at the end.
// The second return is false if any segment is missing or a non-map is hit
// before the path is exhausted.
func Get(m map[string]any, path ...string) (any, bool) {
	var current any = m
	for _, segment := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetMap is Get restricted to map-valued results.
func GetMap(m map[string]any, path ...string) (map[string]any, bool) {
	v, ok := Get(m, path...)
	if !ok {
		return nil, false
	}
	node, ok := v.(map[string]any)
	return node, ok
}

// Set writes value at the path, creating intermediate maps as needed. An
// existing non-map value on the way is replaced by a map.
func Set(m map[string]any, value any, path ...string) {
	if len(path) == 0 {
		return
	}
	current := m
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

// SetDotted is Set with a dot-separated path ("a.b.c"). It is how property
// renames nest a flat source key into an object path in the target.
func SetDotted(m map[string]any, dotted string, value any) {
	Set(m, value, strings.Split(dotted, ".")...)
}

// Delete removes the value at the path. Missing segments are a no-op.
func Delete(m map[string]any, path ...string) {
	if len(path) == 0 {
		return
	}
	parent := m
	for _, segment := range path[:len(path)-1] {
		next, ok := parent[segment].(map[string]any)
		if !ok {
			return
		}
		parent = next
	}
	delete(parent, path[len(path)-1])
}
