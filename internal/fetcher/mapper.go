package fetcher

import (
	"net/url"
	"strings"

	"rudder/internal/state"
)

// noiseKeys are always present in raw device objects and never configuration.
var noiseKeys = map[string]bool{
	"kind":       true,
	"selfLink":   true,
	"generation": true,
}

// commonPartitionPrefix is stripped from values that look like
// cross-reference paths.
const commonPartitionPrefix = "/Common/"

// referenceSuffix marks link-valued properties; splicing removes it.
const referenceSuffix = "Reference"

// matchesIgnore reports whether an ignore rule drops this raw instance.
func (d *Descriptor) matchesIgnore(raw map[string]any) bool {
	for _, rule := range d.Ignore {
		value, ok := raw[rule.Key].(string)
		if !ok || rule.compiled == nil {
			continue
		}
		if rule.compiled.MatchString(value) {
			return true
		}
	}
	return false
}

// mapInstance reshapes one raw device object into its normalized property
// bag.
//
// With a property list, the bag is built from the listed properties only;
// reference keys pass through untouched for the second fetch stage. Without
// one, the whole object is kept minus noise keys (and the name key when the
// descriptor asks for that).
func (d *Descriptor) mapInstance(raw map[string]any) map[string]any {
	bag := make(map[string]any)

	if len(d.Properties) == 0 {
		for key, value := range raw {
			if noiseKeys[key] || (d.DropName && key == "name") {
				continue
			}
			bag[key] = stripPartition(state.DeepCopyValue(value))
		}
		return bag
	}

	applyProperties(bag, d.Properties, raw)

	for refKey := range d.References {
		if value, ok := raw[refKey]; ok {
			bag[refKey] = state.DeepCopyValue(value)
		}
	}
	if !d.DropName {
		if name, ok := raw["name"]; ok {
			bag["name"] = name
		}
	}
	return bag
}

func applyProperties(bag map[string]any, properties []Property, raw map[string]any) {
	for _, p := range properties {
		rawValue, present := raw[p.ID]

		if len(p.Transform) > 0 {
			// The composite value's sub-fields become sibling top-level
			// properties; the composite key itself is consumed.
			if composite, ok := rawValue.(map[string]any); ok {
				applyProperties(bag, p.Transform, composite)
			}
			continue
		}

		if !present {
			switch {
			case p.SkipWhenOmitted:
				continue
			case p.hasBooleanMapping():
				state.SetDotted(bag, p.targetKey(), false)
			case p.Default != nil:
				state.SetDotted(bag, p.targetKey(), state.DeepCopyValue(p.Default))
			}
			continue
		}

		var mapped any
		if p.hasBooleanMapping() {
			mapped = state.DeepEqual(rawValue, p.Truth)
		} else {
			mapped = stripPartition(state.DeepCopyValue(rawValue))
		}
		state.SetDotted(bag, p.targetKey(), mapped)
	}
}

// stripPartition removes the leading common-partition prefix from any value
// shaped like a cross-reference path, descending into arrays and objects.
func stripPartition(value any) any {
	switch typed := value.(type) {
	case string:
		if strings.HasPrefix(typed, commonPartitionPrefix) {
			return strings.TrimPrefix(typed, commonPartitionPrefix)
		}
		return typed
	case []any:
		for i, elem := range typed {
			typed[i] = stripPartition(elem)
		}
		return typed
	case map[string]any:
		for k, v := range typed {
			typed[k] = stripPartition(v)
		}
		return typed
	default:
		return value
	}
}

// pathFromLink extracts the request path from a device self-link. The second
// return is false when the value does not carry the expected link shape,
// which means there is no reference to resolve.
func pathFromLink(value any) (string, bool) {
	object, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	link, ok := object["link"].(string)
	if !ok || link == "" {
		return "", false
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	path := strings.TrimPrefix(parsed.Path, "/mgmt")
	if path == "" {
		return "", false
	}
	return path, true
}

// instanceName extracts the collection instance name from a raw object.
func instanceName(raw map[string]any) (string, bool) {
	name, ok := raw["name"].(string)
	return name, ok && name != ""
}
