/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func cleanupCmd() *cli.Command {
	return &cli.Command{
		Name:                  "cleanup",
		EnableShellCompletion: true,
		Usage:                 "Tear the environment down",
		Description: `Deletes the kind cluster, force-removes the registry container, and strips
the hosts entry. Resources that are already absent are skipped; a backup of
the hosts file is left beside the original.

Certificate files are kept so a later bring-up can reuse a still-valid pair.

# Examples

  oikos cleanup`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := newOrchestrator(cfg).Down(ctx); err != nil {
				return err
			}

			fmt.Printf("\nEnvironment removed.\n")
			return nil
		},
	}
}
