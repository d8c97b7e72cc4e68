// Package app wires the reconciliation pipeline together for the CLI.
//
// A run loads and normalizes the declaration, fetches and normalizes the
// device's current configuration, and reconciles the two into the merged
// document of changes to apply. The pipeline stages live in their own
// packages (declaration, fetcher, reconciler); this package only assembles
// them from run options and reports the outcome.
//
// Applying the merged document to the device is out of scope: per-domain
// apply handlers consume the run result downstream.
package app
