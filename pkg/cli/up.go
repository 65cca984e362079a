/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/oikos/pkg/config"
)

func upCmd() *cli.Command {
	return &cli.Command{
		Name:                  "up",
		EnableShellCompletion: true,
		Usage:                 "Bring the environment to the fully-running state",
		Description: `Runs the full bring-up sequence:

  1. preflight    - verify required tools (docker, kind, kubectl, openssl, sudo)
  2. registry     - ensure the local image registry container is running
  3. cluster      - ensure the kind cluster exists and can pull from the registry
  4. image        - build the application image and push it to the registry
  5. certificate  - ensure a valid TLS pair and its cluster secret
  6. ingress      - ensure the ingress controller is installed and ready
  7. deploy       - apply the application workload, service, and route
  8. hosts        - map the TLS hostname to loopback

The run aborts on the first failure and leaves already-created resources in
place; re-running 'up' resumes from the current state.

# Examples

Full bring-up with defaults:
  oikos up

Bring-up with a config overlay:
  oikos --config ./oikos.yaml up`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := newOrchestrator(cfg).Up(ctx); err != nil {
				return err
			}

			printUpSuccess(cfg)
			return nil
		},
	}
}

// printUpSuccess prints the operator-facing summary.
func printUpSuccess(cfg config.Config) {
	fmt.Printf("\nEnvironment ready!\n")
	fmt.Printf("Application: https://%s\n", cfg.Host)
	fmt.Printf("Registry:    %s\n", cfg.RegistryAddress())
	fmt.Printf("Cluster:     %s (kubectl context %s)\n", cfg.ClusterName, cfg.KubeContext())
}
