// Package cli implements the command-line interface for the oikos local
// environment reconciler.
//
// # Overview
//
// oikos brings a disposable local environment to a fully-running state: a
// local image registry, a kind cluster wired to pull from it, the
// application image built and pushed, a self-signed TLS certificate with
// expiry-aware renewal, the ingress-nginx controller, the application's
// workload/service/route, and a loopback hosts entry for the TLS hostname.
//
// # Commands
//
// up (default) - full bring-up:
//
//	oikos [up]
//
// Runs the fixed eight-step sequence, aborting on the first failure. Every
// step is idempotent, so re-running resumes from the current state.
//
// cleanup - tear-down:
//
//	oikos cleanup
//
// Deletes the cluster, removes the registry container, and strips the hosts
// entry, tolerating absence of any of them.
//
// reset - tear-down followed by bring-up:
//
//	oikos reset
//
// renew-tls - certificate step alone:
//
//	oikos renew-tls
//
// # Global Flags
//
//	--config, -c   Config file overriding the fixed defaults (default: ./oikos.yaml if present)
//	--log-level    Log verbosity: debug, info, warn, error (default: info)
//	--kubeconfig   Explicit kubeconfig path (default: standard discovery)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// Verbs themselves take no flags; all tunables live in the configuration.
//
// # Exit Codes
//
//	0  Selected workflow completed
//	1  Fatal failure during preflight or any step
//
// # Architecture
//
// The CLI parses the verb with urfave/cli/v3 and delegates to
// pkg/orchestrator, which sequences the reconciliation components. Version
// information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/oikos/pkg/cli.version=1.0.0'"
package cli
