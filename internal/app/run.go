package app

import (
	"context"
	"fmt"

	"rudder/internal/declaration"
	"rudder/internal/device"
	"rudder/internal/fetcher"
	"rudder/internal/reconciler"
	"rudder/internal/snapshot"
	"rudder/internal/state"
	"rudder/pkg/logging"

	"k8s.io/apimachinery/pkg/util/sets"
)

// DefaultClassesOfTruth lists the classes rudder is authoritative for when
// no override is configured: every class of the built-in descriptor set.
var DefaultClassesOfTruth = []string{
	"hostname", "DNS", "NTP", "DbVariables", "Provision", "ConfigSync",
	"Authentication", "VLAN", "SelfIp", "Route", "ManagementIpFirewall",
}

// RunOptions configure one reconciliation run.
type RunOptions struct {
	// DeclarationPath is the declaration file to reconcile.
	DeclarationPath string

	// DescriptorsPath optionally replaces the built-in descriptor set.
	DescriptorsPath string

	// Endpoint is the device management URL; Username and Password
	// authenticate against it.
	Endpoint string
	Username string
	Password string

	// StateDir holds the per-device snapshot files.
	StateDir string

	// Identity of the target device. MachineID keys the snapshot store;
	// HostName and DeviceName resolve path tokens.
	Identity device.Identity

	// ClassesOfTruth overrides DefaultClassesOfTruth when non-empty.
	ClassesOfTruth []string

	// ActiveModules lists the device modules currently provisioned.
	ActiveModules []string

	// MaxConcurrentReads caps read fan-out per stage (0 = unbounded).
	MaxConcurrentReads int
}

// RunResult is the outcome of one reconciliation run.
type RunResult struct {
	RunID   string
	Tenants []string
	Desired state.Document
	Current state.Document
	Merged  state.Document
	Skipped []string
	Truth   sets.Set[string]
}

// Run executes a full reconciliation against a live device.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	reader := device.NewRESTReader(opts.Endpoint, device.WithBasicAuth(opts.Username, opts.Password))
	store := snapshot.NewFileStore(opts.StateDir)
	return RunWith(ctx, reader, store, opts)
}

// RunWith executes a reconciliation with an injected reader and snapshot
// store.
func RunWith(ctx context.Context, reader device.Reader, store snapshot.Store, opts RunOptions) (*RunResult, error) {
	decl, err := declaration.Load(opts.DeclarationPath)
	if err != nil {
		return nil, err
	}
	normalized, err := declaration.Normalize(decl)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize declaration: %w", err)
	}
	logging.Info("App", "Normalized declaration with tenants %v", normalized.Tenants)

	descriptors := fetcher.DefaultDescriptors()
	if opts.DescriptorsPath != "" {
		descriptors, err = fetcher.LoadDescriptors(opts.DescriptorsPath)
		if err != nil {
			return nil, err
		}
	}

	// The previously recorded baseline doubles as prior state so dynamic
	// classes keep their full retrieval scope across runs.
	prior, _, err := store.Get(opts.Identity.MachineID)
	if err != nil {
		return nil, err
	}

	f := fetcher.New(reader, device.StaticIdentity(opts.Identity), store, fetcher.Options{
		ActiveModules:      sets.New[string](opts.ActiveModules...),
		MaxConcurrentReads: opts.MaxConcurrentReads,
	})
	fetched, err := f.Fetch(ctx, descriptors, normalized.Document, prior)
	if err != nil {
		return nil, err
	}

	truthClasses := opts.ClassesOfTruth
	if len(truthClasses) == 0 {
		truthClasses = DefaultClassesOfTruth
	}
	truth := sets.New[string](truthClasses...)

	merged := reconciler.ReconcileDocument(normalized.Document, fetched.State, truth)
	logging.Info("App", "Run %s: reconciliation complete", fetched.RunID)

	return &RunResult{
		RunID:   fetched.RunID,
		Tenants: normalized.Tenants,
		Desired: normalized.Document,
		Current: fetched.State,
		Merged:  merged,
		Skipped: fetched.Skipped,
		Truth:   truth,
	}, nil
}
