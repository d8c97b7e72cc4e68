package fetcher

import (
	"context"
	"fmt"
	"strings"

	"rudder/internal/device"
	"rudder/internal/snapshot"
	"rudder/internal/state"
	"rudder/pkg/logging"

	"dario.cat/mergo"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/sets"
)

// DefaultTenant is the tenant current-state documents are filed under.
const DefaultTenant = "Common"

// Options tune a Fetcher.
type Options struct {
	// Tenant overrides the tenant name used for fetched state.
	Tenant string

	// ActiveModules is the set of device modules currently provisioned.
	// Descriptors requiring an inactive module are skipped.
	ActiveModules sets.Set[string]

	// MaxConcurrentReads caps the fan-out per stage. Zero means unbounded.
	MaxConcurrentReads int

	// LegacySnapshot is an original-state baseline carried in prior state
	// from before the durable store existed. It is adopted only when the
	// store has no snapshot for the device yet.
	LegacySnapshot state.Document
}

// Result is the outcome of one fetch.
type Result struct {
	// RunID identifies this fetch in logs.
	RunID string

	// State is the normalized current configuration of the device.
	State state.Document

	// Snapshot is the device's original-state baseline after this fetch's
	// reconciliation (adopted, backfilled, and persisted).
	Snapshot state.Document

	// Skipped lists classes intentionally omitted because their required
	// module is not active.
	Skipped []string
}

// Fetcher retrieves and normalizes device configuration.
type Fetcher struct {
	reader         device.Reader
	identities     device.IdentityProvider
	store          snapshot.Store
	postProcessors map[string]ClassPostProcessor
	opts           Options
}

// New creates a Fetcher. The per-class post-processor registry is resolved
// here, once.
func New(reader device.Reader, identities device.IdentityProvider, store snapshot.Store, opts Options) *Fetcher {
	if opts.Tenant == "" {
		opts.Tenant = DefaultTenant
	}
	return &Fetcher{
		reader:         reader,
		identities:     identities,
		store:          store,
		postProcessors: defaultPostProcessors(),
		opts:           opts,
	}
}

// classEntry is one descriptor's normalized result awaiting assembly.
type classEntry struct {
	descriptor *Descriptor
	value      any
	collection bool
}

// referenceJob is one pending second-stage read: a link-valued property on an
// owning bag.
type referenceJob struct {
	owner      map[string]any
	key        string
	path       string
	properties []Property
	result     any
}

// Fetch retrieves the device's current configuration as directed by the
// descriptor set and reconciles the original-state snapshot.
//
// desired is the normalized declaration and prior the previously observed
// state; together they bound the retrieval scope of dynamic classes so that
// a value is never silently dropped from diffing just because the latest
// declaration omitted it. Any read failure aborts the fetch; nothing is
// persisted.
func (f *Fetcher) Fetch(ctx context.Context, descriptors []Descriptor, desired, prior state.Document) (*Result, error) {
	identity, err := f.identities.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to determine device identity: %w", err)
	}
	resolver := device.NewResolver(identity)

	result := &Result{RunID: uuid.NewString()}
	logging.Info("Fetcher", "Run %s: fetching %d configuration classes from %s", result.RunID, len(descriptors), identity.HostName)

	entries := make([]*classEntry, len(descriptors))
	group, groupCtx := errgroup.WithContext(ctx)
	if f.opts.MaxConcurrentReads > 0 {
		group.SetLimit(f.opts.MaxConcurrentReads)
	}

	for i := range descriptors {
		d := &descriptors[i]
		if d.RequiredModule != "" && !f.opts.ActiveModules.Has(d.RequiredModule) {
			result.Skipped = append(result.Skipped, d.Class)
			logging.Debug("Fetcher", "Skipping %s: module %s not active", d.Class, d.RequiredModule)
			continue
		}

		scope := f.dynamicScope(d, desired, prior)
		entry := &classEntry{descriptor: d}
		entries[i] = entry

		group.Go(func() error {
			path, err := resolver.Resolve(d.Path)
			if err != nil {
				return fmt.Errorf("descriptor %s: %w", d.Class, err)
			}
			if !d.Quiet {
				logging.Debug("Fetcher", "Reading %s", path)
			}
			raw, err := f.reader.List(groupCtx, path, nil)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", d.Class, err)
			}
			f.processResult(entry, raw, scope)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := f.resolveReferences(ctx, entries); err != nil {
		return nil, err
	}

	result.State = f.assemble(entries)

	snap, err := f.reconcileSnapshot(descriptors, identity.MachineID, result.State)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap

	logging.Info("Fetcher", "Run %s: fetch complete", result.RunID)
	return result, nil
}

// processResult reshapes one raw read result into its normalized value.
func (f *Fetcher) processResult(entry *classEntry, raw any, scope sets.Set[string]) {
	d := entry.descriptor
	switch typed := raw.(type) {
	case []any:
		instances := make(map[string]any)
		for _, item := range typed {
			object, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, ok := instanceName(object)
			if !ok || d.matchesIgnore(object) {
				continue
			}
			if d.DynamicScope && !scope.Has(name) {
				continue
			}
			instances[name] = d.mapInstance(object)
		}
		entry.value = instances
		entry.collection = true
	case map[string]any:
		bag := d.mapInstance(typed)
		if d.Singular {
			entry.value = singularValue(bag)
			return
		}
		entry.value = bag
	default:
		entry.value = typed
	}
}

// singularValue unwraps a one-property bag to its lone value.
func singularValue(bag map[string]any) any {
	if len(bag) == 1 {
		for _, v := range bag {
			return v
		}
	}
	return bag
}

// dynamicScope is the union of names already tracked in prior state and
// names the declaration mentions for a dynamic class. Both instance names
// and bag keys count: open-ended variable sets keep their variables as bag
// keys on the declaration side.
func (f *Fetcher) dynamicScope(d *Descriptor, desired, prior state.Document) sets.Set[string] {
	if !d.DynamicScope {
		return nil
	}
	scope := sets.New[string]()
	for _, doc := range []state.Document{prior, desired} {
		instances, ok := state.GetMap(doc, d.Domain, f.opts.Tenant, d.Class)
		if !ok {
			continue
		}
		for name, value := range instances {
			scope.Insert(name)
			if bag, ok := value.(map[string]any); ok {
				for key := range bag {
					scope.Insert(key)
				}
			}
		}
	}
	return scope
}

// resolveReferences runs the second fan-out stage: every link-valued
// reference property across all entries is fetched concurrently, then the
// results are spliced onto their owning instances under the un-suffixed
// property name.
func (f *Fetcher) resolveReferences(ctx context.Context, entries []*classEntry) error {
	var jobs []*referenceJob
	for _, entry := range entries {
		if entry == nil || len(entry.descriptor.References) == 0 {
			continue
		}
		for _, bag := range entryBags(entry) {
			for refKey, refProperties := range entry.descriptor.References {
				path, ok := pathFromLink(bag[refKey])
				if !ok {
					// No link shape means no reference to resolve.
					continue
				}
				jobs = append(jobs, &referenceJob{
					owner:      bag,
					key:        refKey,
					path:       path,
					properties: refProperties,
				})
			}
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	logging.Debug("Fetcher", "Resolving %d references", len(jobs))
	group, groupCtx := errgroup.WithContext(ctx)
	if f.opts.MaxConcurrentReads > 0 {
		group.SetLimit(f.opts.MaxConcurrentReads)
	}
	for _, job := range jobs {
		job := job
		group.Go(func() error {
			raw, err := f.reader.List(groupCtx, job.path, selectProperties(job.properties))
			if err != nil {
				return fmt.Errorf("failed to resolve reference %s: %w", job.key, err)
			}
			job.result = mapReference(job.properties, raw)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, job := range jobs {
		delete(job.owner, job.key)
		job.owner[strings.TrimSuffix(job.key, referenceSuffix)] = job.result
	}
	return nil
}

// entryBags lists the property bags of an entry: the instance bags of a
// collection, or the single bag itself.
func entryBags(entry *classEntry) []map[string]any {
	object, ok := entry.value.(map[string]any)
	if !ok {
		return nil
	}
	if !entry.collection {
		return []map[string]any{object}
	}
	var bags []map[string]any
	for _, v := range object {
		if bag, ok := v.(map[string]any); ok {
			bags = append(bags, bag)
		}
	}
	return bags
}

func selectProperties(properties []Property) []string {
	selected := []string{"name"}
	for _, p := range properties {
		selected = append(selected, p.ID)
	}
	return selected
}

// mapReference reshapes referenced data with the sub-property list of
// interest.
func mapReference(properties []Property, raw any) any {
	ref := Descriptor{Properties: properties}
	switch typed := raw.(type) {
	case []any:
		items := make([]any, 0, len(typed))
		for _, item := range typed {
			if object, ok := item.(map[string]any); ok {
				items = append(items, ref.mapInstance(object))
			}
		}
		return items
	case map[string]any:
		return ref.mapInstance(typed)
	default:
		return typed
	}
}

// assemble files every entry into a normalized document and applies the
// per-class post-processor registry.
func (f *Fetcher) assemble(entries []*classEntry) state.Document {
	doc := state.Document{}
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		d := entry.descriptor
		value := entry.value
		if processor, ok := f.postProcessors[d.Class]; ok {
			value = processor(value)
		}

		bucket := f.tenantBucket(doc, d.Domain)
		if d.SchemaMerge != nil {
			mergeSchema(bucket, d, value)
			continue
		}
		bucket[d.Class] = value
	}
	return doc
}

// mergeSchema folds a sub-resource result into its class bag at the declared
// path, either additively or by replacement.
func mergeSchema(bucket map[string]any, d *Descriptor, value any) {
	directive := d.SchemaMerge
	bag, isMap := value.(map[string]any)
	if directive.SkipWhenEmpty && (value == nil || (isMap && len(bag) == 0)) {
		return
	}

	classBag, ok := bucket[d.Class].(map[string]any)
	if !ok {
		classBag = make(map[string]any)
		bucket[d.Class] = classBag
	}

	if !directive.Additive {
		if len(directive.Path) == 0 {
			for k, v := range bag {
				classBag[k] = v
			}
		} else {
			state.Set(classBag, value, directive.Path...)
		}
		return
	}

	target := classBag
	if len(directive.Path) > 0 {
		existing, ok := state.GetMap(classBag, directive.Path...)
		if !ok {
			existing = make(map[string]any)
			state.Set(classBag, existing, directive.Path...)
		}
		target = existing
	}
	if isMap {
		// Additive: existing values win, new keys are added.
		if err := mergo.Merge(&target, bag); err != nil {
			logging.Warn("Fetcher", "Schema merge for %s failed: %v", d.Class, err)
		}
	}
}

func (f *Fetcher) tenantBucket(doc state.Document, domain string) map[string]any {
	domainNode, ok := doc[domain].(map[string]any)
	if !ok {
		domainNode = make(map[string]any)
		doc[domain] = domainNode
	}
	tenantNode, ok := domainNode[f.opts.Tenant].(map[string]any)
	if !ok {
		tenantNode = make(map[string]any)
		domainNode[f.opts.Tenant] = tenantNode
	}
	return tenantNode
}

// reconcileSnapshot adopts, backfills and persists the device's
// original-state baseline. Existing snapshot values are never overwritten;
// only values newly appearing in a dynamic class are added.
func (f *Fetcher) reconcileSnapshot(descriptors []Descriptor, machineID string, current state.Document) (state.Document, error) {
	baseline, found, err := f.store.Get(machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", machineID, err)
	}
	if !found {
		if f.opts.LegacySnapshot != nil {
			logging.Info("Fetcher", "Adopting legacy snapshot for %s", machineID)
			baseline = f.opts.LegacySnapshot.DeepCopy()
		} else {
			logging.Info("Fetcher", "Recording original state for %s", machineID)
			baseline = current.DeepCopy()
		}
	}

	for i := range descriptors {
		d := &descriptors[i]
		if !d.DynamicScope {
			continue
		}
		instances, ok := state.GetMap(current, d.Domain, f.opts.Tenant, d.Class)
		if !ok {
			continue
		}
		recorded, ok := state.GetMap(baseline, d.Domain, f.opts.Tenant, d.Class)
		if !ok {
			recorded = make(map[string]any)
			state.Set(baseline, recorded, d.Domain, f.opts.Tenant, d.Class)
		}
		for name, value := range instances {
			if _, exists := recorded[name]; !exists {
				recorded[name] = state.DeepCopyValue(value)
			}
		}
	}

	if err := f.store.Set(machineID, baseline); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot for %s: %w", machineID, err)
	}
	return baseline, nil
}
