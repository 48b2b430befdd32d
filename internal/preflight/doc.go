// Package preflight provides readiness checks for the external services and
// filesystem paths the pipelines depend on.
//
// The CLI "hhapply check" command runs the full set before an operator
// schedules unattended runs: directory access, free disk space, hh.ru
// credentials, and Notion reachability. Each check is gated by its config
// toggle -- disabled integrations are skipped.
package preflight
