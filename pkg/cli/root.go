/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/logging"
	"github.com/NVIDIA/oikos/pkg/orchestrator"
)

const (
	name           = "oikos"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// workflows is what a verb needs from the orchestrator.
type workflows interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Reset(ctx context.Context) error
	RenewTLS(ctx context.Context) error
}

// newOrchestrator is swapped in tests.
var newOrchestrator = func(cfg config.Config) workflows {
	return orchestrator.NewDefault(cfg)
}

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a config file overriding the fixed defaults (default: ./oikos.yaml if present)",
		Sources: cli.EnvVars("OIKOS_CONFIG"),
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error)",
		Value: "info",
	}
	kubeconfigFlag = &cli.StringFlag{
		Name:  "kubeconfig",
		Usage: "Explicit kubeconfig path (default: standard discovery)",
	}
)

// Execute runs the CLI. It is called by main.main() and exits non-zero on
// any fatal failure of the selected workflow.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Reconcile a local TLS-terminated application environment",
		Version:               version,
		EnableShellCompletion: true,
		Description: fmt.Sprintf(`oikos - local environment reconciler

Version: %s
Commit:  %s
Built:   %s

Brings a disposable local environment from whatever state it is in to a
fully-running target state: a local image registry, a kind cluster joined to
it, the application image built and pushed, a self-signed TLS certificate
with expiry-aware renewal, an ingress controller, the application's runtime
objects, and a loopback hosts entry for the TLS hostname.

Every step is idempotent; re-running a verb after a failure resumes where the
previous run stopped. Without a verb, oikos runs the full bring-up.`,
			version, commit, date),
		Flags: []cli.Flag{
			configFlag,
			logLevelFlag,
			kubeconfigFlag,
		},
		Before:         setup,
		DefaultCommand: "up",
		Commands: []*cli.Command{
			upCmd(),
			cleanupCmd(),
			resetCmd(),
			renewTLSCmd(),
		},
	}
}

// setup configures slog after flags are parsed so --log-level takes effect
// before any command executes.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date)
	return ctx, nil
}

// loadConfig builds the effective configuration for a verb: fixed defaults,
// optional file overlay, then the kubeconfig flag.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	if kc := cmd.String("kubeconfig"); kc != "" {
		cfg.Kubeconfig = kc
	}
	return cfg, nil
}
