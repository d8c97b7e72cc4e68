package device

import (
	"fmt"
	"regexp"
	"strings"
)

// Token names accepted in retrieval path templates.
const (
	TokenHostName   = "hostName"
	TokenDeviceName = "deviceName"
)

// Pattern to match path tokens like {{ hostName }}.
var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Resolver substitutes identity-derived tokens into retrieval path
// templates.
type Resolver struct {
	values map[string]string
}

// NewResolver builds a Resolver for one device identity.
func NewResolver(identity Identity) *Resolver {
	return &Resolver{
		values: map[string]string{
			TokenHostName:   identity.HostName,
			TokenDeviceName: identity.DeviceName,
		},
	}
}

// Resolve replaces every token in the template with its value. A token
// outside the vocabulary is an error: descriptors are static data, so an
// unknown token is a descriptor bug, not a runtime condition.
func (r *Resolver) Resolve(template string) (string, error) {
	var missing []string
	result := template

	for _, match := range tokenPattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		value, ok := r.values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		result = strings.ReplaceAll(result, match[0], value)
	}

	if len(missing) > 0 {
		return "", fmt.Errorf("unknown path tokens: %s", strings.Join(missing, ", "))
	}
	return result, nil
}
