/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package preflight

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/runner"
	"github.com/NVIDIA/oikos/pkg/version"
)

// Checker verifies the operator's environment before any stateful action runs.
// It resolves every required tool on PATH and, where the configuration names a
// minimum version, probes the installed version. No side effects.
type Checker struct {
	tools  []config.Tool
	runner runner.Runner
}

// New creates a Checker for the tools the configuration requires.
func New(cfg config.Config, r runner.Runner) *Checker {
	return &Checker{
		tools:  cfg.RequiredTools,
		runner: r,
	}
}

// Check scans all required tools concurrently and reports failures in
// declared order, so the operator always sees the same first gap regardless
// of goroutine scheduling. Returns nil only if every tool is present and
// meets its minimum version.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.PreflightTimeout)
	defer cancel()

	results := make([]error, len(c.tools))
	g, gctx := errgroup.WithContext(ctx)

	for i, tool := range c.tools {
		g.Go(func() error {
			// Collect instead of returning: a returned error would cancel
			// sibling probes and poison declared-order reporting.
			results[i] = c.checkTool(gctx, tool)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range results {
		if err != nil {
			return err
		}
	}

	slog.Debug("preflight passed", slog.Int("tools", len(c.tools)))
	return nil
}

// checkTool resolves one tool and enforces its version gate when configured.
func (c *Checker) checkTool(ctx context.Context, tool config.Tool) error {
	path, err := c.runner.LookPath(tool.Name)
	if err != nil {
		return serrors.New(serrors.ErrCodeToolMissing,
			fmt.Sprintf("required tool %q not found on PATH", tool.Name))
	}

	if tool.MinVersion == "" {
		slog.Debug("preflight tool found", slog.String("tool", tool.Name), slog.String("path", path))
		return nil
	}

	minimum, err := version.ParseVersion(tool.MinVersion)
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid minimum version %q configured for %s", tool.MinVersion, tool.Name), err)
	}

	res, err := c.runner.Run(ctx, runner.Command{Name: tool.Name, Args: versionArgs(tool.Name)})
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to probe %s version", tool.Name), err)
	}

	installed, err := version.Extract(res.Stdout)
	if err != nil {
		// The gate is advisory when the banner is unreadable; presence alone
		// satisfies the check.
		slog.Warn("could not read tool version, skipping gate",
			slog.String("tool", tool.Name),
			slog.String("error", err.Error()))
		return nil
	}

	if !installed.EqualsOrNewer(minimum) {
		return serrors.NewWithContext(serrors.ErrCodeToolMissing,
			fmt.Sprintf("%s %s is older than required %s", tool.Name, installed, minimum),
			map[string]any{"tool": tool.Name, "installed": installed.String(), "required": minimum.String()})
	}

	slog.Debug("preflight tool found",
		slog.String("tool", tool.Name),
		slog.String("path", path),
		slog.String("version", installed.String()))
	return nil
}

// versionArgs returns the argument list that makes a tool print its version.
// kubectl refuses --version and wants its client version asked for explicitly.
func versionArgs(name string) []string {
	if name == "kubectl" {
		return []string{"version", "--client"}
	}
	return []string{"--version"}
}
