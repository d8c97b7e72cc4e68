package fetcher

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Property describes one property of interest within a raw device object and
// how it maps into the normalized bag.
type Property struct {
	// ID is the property name in the raw device object.
	ID string `yaml:"id"`

	// NewID renames the property in the normalized bag. Dot-separated
	// paths nest a flat source key into an object path in the target.
	NewID string `yaml:"newId,omitempty"`

	// Truth and Falsehood map a two-valued device property onto a boolean:
	// a raw value equal to Truth maps to true, anything else to false. An
	// absent property maps to false unless SkipWhenOmitted is set.
	Truth     any `yaml:"truth,omitempty"`
	Falsehood any `yaml:"falsehood,omitempty"`

	// SkipWhenOmitted leaves the property absent from the bag when the
	// source lacks it, instead of defaulting.
	SkipWhenOmitted bool `yaml:"skipWhenOmitted,omitempty"`

	// Default is substituted when the source lacks the property.
	Default any `yaml:"default,omitempty"`

	// Transform redistributes sub-fields of a composite value into sibling
	// top-level properties of the bag. The composite source key itself is
	// consumed.
	Transform []Property `yaml:"transform,omitempty"`
}

// hasBooleanMapping reports whether the property carries a truth/falsehood
// pair.
func (p Property) hasBooleanMapping() bool {
	return p.Truth != nil || p.Falsehood != nil
}

// targetKey is the (possibly dotted) key the property maps to.
func (p Property) targetKey() string {
	if p.NewID != "" {
		return p.NewID
	}
	return p.ID
}

// IgnoreRule drops an instance whose property matches a regular expression.
type IgnoreRule struct {
	Key     string `yaml:"key"`
	Pattern string `yaml:"pattern"`

	compiled *regexp.Regexp
}

// SchemaMerge directs a descriptor's result into an existing class bag
// instead of standing alone.
type SchemaMerge struct {
	// Path is the target location inside the class bag.
	Path []string `yaml:"path"`

	// Additive merges into existing values instead of overwriting them.
	Additive bool `yaml:"additive,omitempty"`

	// SkipWhenEmpty skips the merge entirely when the fetched sub-resource
	// is empty.
	SkipWhenEmpty bool `yaml:"skipWhenEmpty,omitempty"`
}

// Descriptor is the static metadata for one device-state category.
type Descriptor struct {
	// Path is the retrieval path template. It may embed {{hostName}} and
	// {{deviceName}} tokens.
	Path string `yaml:"path"`

	// Domain and Class locate the result in the normalized document.
	Domain string `yaml:"domain"`
	Class  string `yaml:"class"`

	// Properties lists the properties of interest. Raw properties outside
	// this list (and outside References) are discarded.
	Properties []Property `yaml:"properties,omitempty"`

	// References names link-valued properties whose targets are fetched in
	// the second stage, restricted to the listed sub-properties, and
	// spliced back under the un-suffixed property name.
	References map[string][]Property `yaml:"references,omitempty"`

	// Singular stores the lone mapped value directly under the class key
	// instead of a property bag.
	Singular bool `yaml:"singular,omitempty"`

	// DropName strips the name key from each raw object.
	DropName bool `yaml:"dropName,omitempty"`

	// Quiet suppresses per-read logging.
	Quiet bool `yaml:"quiet,omitempty"`

	// Ignore drops instances whose designated key matches the paired
	// pattern.
	Ignore []IgnoreRule `yaml:"ignore,omitempty"`

	// RequiredModule names a device module that must be active for this
	// descriptor to apply. When the module is inactive the descriptor is
	// recorded as intentionally omitted, not an error.
	RequiredModule string `yaml:"requiredModule,omitempty"`

	// DynamicScope marks a class whose members are enumerable only by
	// re-reading everything (a large open-ended variable set). The fetched
	// collection is filtered to names already tracked in prior state or
	// named by the declaration.
	DynamicScope bool `yaml:"dynamicScope,omitempty"`

	// SchemaMerge, when set, merges the result into the class bag at the
	// given path rather than filing it as its own class entry.
	SchemaMerge *SchemaMerge `yaml:"schemaMerge,omitempty"`
}

// ValidateDescriptors checks static descriptor consistency and compiles
// ignore patterns. It must run once before the descriptor set is used.
func ValidateDescriptors(descriptors []Descriptor) error {
	for i := range descriptors {
		d := &descriptors[i]
		if d.Path == "" {
			return fmt.Errorf("descriptor %d (%s): path is required", i, d.Class)
		}
		if d.Class == "" {
			return fmt.Errorf("descriptor %d (%s): class is required", i, d.Path)
		}
		if d.Domain == "" {
			return fmt.Errorf("descriptor %d (%s): domain is required", i, d.Class)
		}
		for j := range d.Ignore {
			rule := &d.Ignore[j]
			compiled, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return fmt.Errorf("descriptor %s ignore rule %q: %w", d.Class, rule.Pattern, err)
			}
			rule.compiled = compiled
		}
	}
	return nil
}

// LoadDescriptors reads a descriptor set from a YAML file and validates it.
func LoadDescriptors(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptors %s: %w", path, err)
	}
	var descriptors []Descriptor
	if err := yaml.Unmarshal(data, &descriptors); err != nil {
		return nil, fmt.Errorf("failed to parse descriptors %s: %w", path, err)
	}
	if err := ValidateDescriptors(descriptors); err != nil {
		return nil, err
	}
	return descriptors, nil
}
