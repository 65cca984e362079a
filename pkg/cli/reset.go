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

func resetCmd() *cli.Command {
	return &cli.Command{
		Name:                  "reset",
		EnableShellCompletion: true,
		Usage:                 "Tear the environment down and bring it back up",
		Description: `Runs cleanup followed by the full bring-up sequence under a single run.
Useful when the environment has drifted into a state a plain 'up' cannot
converge from.

# Examples

  oikos reset`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := newOrchestrator(cfg).Reset(ctx); err != nil {
				return err
			}

			printUpSuccess(cfg)
			return nil
		},
	}
}
