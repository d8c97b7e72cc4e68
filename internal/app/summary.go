package app

import (
	"sort"

	"rudder/internal/state"
)

// Disposition of one declared class after reconciliation.
const (
	DispositionPassThrough = "pass-through"
	DispositionConverged   = "converged"
	DispositionInSync      = "in sync"
)

// ClassSummary describes what the run decided for one declared class.
type ClassSummary struct {
	Domain      string
	Tenant      string
	Class       string
	Disposition string
}

// Summarize lists the per-class outcome of a run, sorted by domain, tenant
// and class.
func (r *RunResult) Summarize() []ClassSummary {
	var summaries []ClassSummary
	for domain, domainValue := range r.Desired {
		domainNode, ok := domainValue.(map[string]any)
		if !ok {
			continue
		}
		for tenant, tenantValue := range domainNode {
			bucket, ok := tenantValue.(map[string]any)
			if !ok {
				continue
			}
			for class := range bucket {
				summaries = append(summaries, ClassSummary{
					Domain:      domain,
					Tenant:      tenant,
					Class:       class,
					Disposition: r.disposition(domain, tenant, class),
				})
			}
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Tenant != b.Tenant {
			return a.Tenant < b.Tenant
		}
		return a.Class < b.Class
	})
	return summaries
}

func (r *RunResult) disposition(domain, tenant, class string) string {
	if !r.Truth.Has(class) {
		return DispositionPassThrough
	}
	if _, ok := state.Get(r.Merged, domain, tenant, class); ok {
		return DispositionConverged
	}
	return DispositionInSync
}
