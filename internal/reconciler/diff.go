package reconciler

import "rudder/internal/state"

type changeKind int

const (
	// changeCreate adds a value present in desired but absent in current.
	changeCreate changeKind = iota
	// changeEdit replaces a value that differs between the two documents.
	changeEdit
	// changeDelete removes a value present in current but absent in desired.
	changeDelete
)

// change is one structural difference, addressed by its path from the
// document root.
type change struct {
	path  []string
	kind  changeKind
	value any
}

// diff walks desired against current and returns every structural
// difference. Arrays are compared wholesale: any element-level difference is
// a single edit of the whole array.
func diff(current, desired map[string]any) []change {
	var changes []change
	diffMaps(current, desired, nil, &changes)
	return changes
}

func diffMaps(current, desired map[string]any, path []string, changes *[]change) {
	for key, desiredValue := range desired {
		keyPath := append(append([]string{}, path...), key)
		currentValue, exists := current[key]
		if !exists {
			*changes = append(*changes, change{path: keyPath, kind: changeCreate, value: desiredValue})
			continue
		}

		currentMap, currentIsMap := currentValue.(map[string]any)
		desiredMap, desiredIsMap := desiredValue.(map[string]any)
		if currentIsMap && desiredIsMap {
			diffMaps(currentMap, desiredMap, keyPath, changes)
			continue
		}

		if !state.DeepEqual(currentValue, desiredValue) {
			*changes = append(*changes, change{path: keyPath, kind: changeEdit, value: desiredValue})
		}
	}

	for key, currentValue := range current {
		if _, exists := desired[key]; exists {
			continue
		}
		keyPath := append(append([]string{}, path...), key)
		*changes = append(*changes, change{path: keyPath, kind: changeDelete, value: currentValue})
	}
}

// applyChange mutates target so the value at the change's path matches
// desired.
func applyChange(target map[string]any, c change) {
	switch c.kind {
	case changeCreate, changeEdit:
		state.Set(target, state.DeepCopyValue(c.value), c.path...)
	case changeDelete:
		state.Delete(target, c.path...)
	}
}
