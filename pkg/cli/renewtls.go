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

func renewTLSCmd() *cli.Command {
	return &cli.Command{
		Name:                  "renew-tls",
		EnableShellCompletion: true,
		Usage:                 "Renew the TLS certificate if it is near expiry",
		Description: `Runs the certificate step alone: a pair with more than 30 days of validity
remaining is kept, anything else is regenerated, and the cluster TLS secret
is re-applied from the on-disk files either way.

# Examples

  oikos renew-tls`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := newOrchestrator(cfg).RenewTLS(ctx); err != nil {
				return err
			}

			fmt.Printf("\nCertificate current.\n")
			fmt.Printf("Key:         %s\n", cfg.KeyPath())
			fmt.Printf("Certificate: %s\n", cfg.CertPath())
			fmt.Printf("Secret:      %s/%s\n", cfg.Namespace, cfg.TLSSecretName)
			return nil
		},
	}
}
