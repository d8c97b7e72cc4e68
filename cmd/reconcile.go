package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"rudder/internal/app"
	"rudder/internal/device"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// runFlags are the options shared by the reconcile and watch commands.
type runFlags struct {
	declaration string
	descriptors string
	endpoint    string
	username    string
	password    string
	stateDir    string
	machineID   string
	hostName    string
	deviceName  string
	truth       []string
	modules     []string
	maxReads    int
	output      string
	quiet       bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.declaration, "declaration", "f", "", "Declaration file to reconcile (required)")
	cmd.Flags().StringVar(&f.descriptors, "descriptors", "", "Descriptor file overriding the built-in set")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Device management endpoint URL (required)")
	cmd.Flags().StringVar(&f.username, "username", "", "Device username")
	cmd.Flags().StringVar(&f.password, "password", os.Getenv("RUDDER_PASSWORD"), "Device password (or RUDDER_PASSWORD)")
	cmd.Flags().StringVar(&f.stateDir, "state-dir", defaultStateDir(), "Directory for per-device snapshots")
	cmd.Flags().StringVar(&f.machineID, "machine-id", "", "Stable device identity keying the snapshot store (required)")
	cmd.Flags().StringVar(&f.hostName, "host-name", "", "Device hostname for path token resolution")
	cmd.Flags().StringVar(&f.deviceName, "device-name", "", "Device cluster name for path token resolution")
	cmd.Flags().StringSliceVar(&f.truth, "truth", nil, "Classes to reconcile authoritatively (default: built-in set)")
	cmd.Flags().StringSliceVar(&f.modules, "modules", nil, "Device modules currently provisioned")
	cmd.Flags().IntVar(&f.maxReads, "max-reads", 0, "Cap on concurrent device reads per stage (0 = unbounded)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "yaml", "Merged document format (yaml, json)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Suppress the progress spinner and summary table")

	cmd.MarkFlagRequired("declaration")
	cmd.MarkFlagRequired("endpoint")
	cmd.MarkFlagRequired("machine-id")
}

func (f *runFlags) options() app.RunOptions {
	return app.RunOptions{
		DeclarationPath: f.declaration,
		DescriptorsPath: f.descriptors,
		Endpoint:        f.endpoint,
		Username:        f.username,
		Password:        f.password,
		StateDir:        f.stateDir,
		Identity: device.Identity{
			MachineID:  f.machineID,
			HostName:   f.hostName,
			DeviceName: f.deviceName,
		},
		ClassesOfTruth:     f.truth,
		ActiveModules:      f.modules,
		MaxConcurrentReads: f.maxReads,
	}
}

func defaultStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rudder"
	}
	return homeDir + "/.config/rudder/state"
}

var reconcileFlags runFlags

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a declaration against a device once",
	Long: `Reconcile parses the declaration, fetches and normalizes the device's
current configuration, and prints the merged document of changes that
per-domain apply handlers would need to make.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context(), &reconcileFlags)
	},
}

func init() {
	reconcileFlags.register(reconcileCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(ctx context.Context, flags *runFlags) error {
	var s *spinner.Spinner
	if !flags.quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Reconciling..."
		s.Start()
	}

	result, err := app.Run(ctx, flags.options())
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	if !flags.quiet {
		printSummary(result)
	}
	return printMerged(result, flags.output)
}

// printSummary renders the per-class disposition table to stderr so stdout
// stays machine-readable.
func printSummary(result *app.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stderr)
	t.AppendHeader(table.Row{"Domain", "Tenant", "Class", "Disposition"})
	for _, s := range result.Summarize() {
		t.AppendRow(table.Row{s.Domain, s.Tenant, s.Class, s.Disposition})
	}
	for _, skipped := range result.Skipped {
		t.AppendRow(table.Row{"", "", skipped, "skipped (module inactive)"})
	}
	t.Render()
}

func printMerged(result *app.RunResult, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(result.Merged)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "json":
		data, err := json.MarshalIndent(result.Merged, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
