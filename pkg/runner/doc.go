// Package runner provides the command-execution seam between reconciliation
// logic and the external tools it drives (docker, kind, kubectl, openssl).
//
// Components hold a Runner instead of calling os/exec directly, which keeps
// their control flow testable: production code uses Local, tests substitute
// Fake with scripted responses and recorded calls.
package runner
