package declaration

import (
	"errors"
	"fmt"
	"sort"

	"rudder/internal/state"
)

const (
	// ClassKey is the discriminator property naming the type of a node.
	ClassKey = "class"

	// TenantClass marks a root-level node as a tenant.
	TenantClass = "Tenant"

	// SystemDomain is the top-level system domain. Sub-instances under it
	// keep their raw property key as the instance name.
	SystemDomain = "System"
)

// structuralKeys are container properties that carry document structure
// rather than configuration and are skipped during grouping.
var structuralKeys = map[string]bool{
	ClassKey:        true,
	"schemaVersion": true,
	"label":         true,
	"remark":        true,
}

// ErrMalformed indicates the declaration is not shaped as expected. The
// whole normalization attempt is discarded; there is no partial recovery.
var ErrMalformed = errors.New("malformed declaration")

// DuplicateInstanceError reports two containers synthesizing the same
// instance name within one (domain, tenant, class) bucket.
type DuplicateInstanceError struct {
	Domain   string
	Tenant   string
	Class    string
	Instance string
}

func (e *DuplicateInstanceError) Error() string {
	return fmt.Sprintf("duplicate instance %q in %s/%s/%s", e.Instance, e.Domain, e.Tenant, e.Class)
}

// Result is the output of Normalize.
type Result struct {
	// Tenants lists the tenant names found in the declaration, sorted.
	Tenants []string

	// Document is the normalized configuration grouped by domain, tenant,
	// class and instance name.
	Document state.Document
}

// Normalize converts a decoded declaration into its normalized form.
func Normalize(decl map[string]any) (*Result, error) {
	if decl == nil {
		return nil, fmt.Errorf("%w: declaration root is not an object", ErrMalformed)
	}

	result := &Result{Document: state.Document{}}

	for tenantName, tenantValue := range decl {
		tenant, ok := tenantValue.(map[string]any)
		if !ok || tenant[ClassKey] != TenantClass {
			continue
		}
		result.Tenants = append(result.Tenants, tenantName)
		if err := normalizeTenant(result.Document, tenantName, tenant); err != nil {
			return nil, err
		}
	}

	sort.Strings(result.Tenants)
	return result, nil
}

func normalizeTenant(doc state.Document, tenantName string, tenant map[string]any) error {
	for containerName, containerValue := range tenant {
		if structuralKeys[containerName] {
			continue
		}
		container, ok := containerValue.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: tenant %s property %s is not an object", ErrMalformed, tenantName, containerName)
		}
		domain, ok := container[ClassKey].(string)
		if !ok {
			// Untyped tenant properties are not containers; they carry no
			// domain and are dropped from the normalized form.
			continue
		}
		if err := normalizeContainer(doc, tenantName, domain, containerName, container); err != nil {
			return err
		}
	}
	return nil
}

func normalizeContainer(doc state.Document, tenantName, domain, containerName string, container map[string]any) error {
	for key, value := range container {
		if structuralKeys[key] {
			continue
		}
		name := instanceName(domain, containerName, key)

		sub, ok := value.(map[string]any)
		if ok {
			if class, typed := sub[ClassKey].(string); typed {
				bag := state.DeepCopyValue(sub).(map[string]any)
				delete(bag, ClassKey)
				if err := fileInstance(doc, domain, tenantName, class, name, bag); err != nil {
					return err
				}
				continue
			}
		}

		// Plain property: filed directly under the tenant.
		bucket := tenantBucket(doc, domain, tenantName)
		bucket[name] = state.DeepCopyValue(value)
	}
	return nil
}

// instanceName synthesizes the normalized instance name for a container
// property. The System domain keeps the raw key unqualified.
func instanceName(domain, containerName, key string) string {
	if domain == SystemDomain {
		return key
	}
	return containerName + "_" + key
}

func fileInstance(doc state.Document, domain, tenant, class, name string, bag map[string]any) error {
	bucket := tenantBucket(doc, domain, tenant)
	instances, ok := bucket[class].(map[string]any)
	if !ok {
		instances = map[string]any{}
		bucket[class] = instances
	}
	if _, exists := instances[name]; exists {
		return &DuplicateInstanceError{Domain: domain, Tenant: tenant, Class: class, Instance: name}
	}
	instances[name] = bag
	return nil
}

func tenantBucket(doc state.Document, domain, tenant string) map[string]any {
	domainNode, ok := doc[domain].(map[string]any)
	if !ok {
		domainNode = map[string]any{}
		doc[domain] = domainNode
	}
	tenantNode, ok := domainNode[tenant].(map[string]any)
	if !ok {
		tenantNode = map[string]any{}
		domainNode[tenant] = tenantNode
	}
	return tenantNode
}
