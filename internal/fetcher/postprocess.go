package fetcher

// ClassPostProcessor canonicalizes one class's value after mapping. The
// registry keeps each class's oddity isolated and independently testable;
// processors must be pure transformations of their input.
type ClassPostProcessor func(value any) any

// defaultPostProcessors returns the registry resolved at fetcher
// construction.
func defaultPostProcessors() map[string]ClassPostProcessor {
	return map[string]ClassPostProcessor{
		"SelfIp": normalizeSelfIps,
	}
}

// normalizeSelfIps canonicalizes the multi-valued allow-service field of
// every self-address instance. The device reports it three ways: absent
// (nothing allowed), a singleton default array, or an explicit list. The
// canonical forms are the scalar "none", the scalar "default", and the list.
func normalizeSelfIps(value any) any {
	instances, ok := value.(map[string]any)
	if !ok {
		return value
	}
	for _, instance := range instances {
		bag, ok := instance.(map[string]any)
		if !ok {
			continue
		}
		bag["allowService"] = canonicalAllowService(bag["allowService"])
	}
	return instances
}

func canonicalAllowService(value any) any {
	list, ok := value.([]any)
	if !ok {
		if value == nil {
			return "none"
		}
		return value
	}
	if len(list) == 1 && list[0] == "default" {
		return "default"
	}
	return list
}
