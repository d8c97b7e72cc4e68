package declaration

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Load reads a declaration file and decodes it. Declarations are JSON
// documents; YAML is accepted as a superset since it decodes to the same
// shapes.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a declaration from raw bytes.
func Parse(data []byte) (map[string]any, error) {
	var decl map[string]any
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if decl == nil {
		return nil, fmt.Errorf("%w: declaration is empty", ErrMalformed)
	}
	return decl, nil
}
