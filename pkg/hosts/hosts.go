/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package hosts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/runner"
)

// Patcher keeps the loopback mapping for the TLS hostname in the system
// resolution file. Reads are plain file reads; writes go through sudo because
// the file is root-owned.
type Patcher struct {
	cfg    config.Config
	runner runner.Runner
}

// NewPatcher creates a hosts file Patcher.
func NewPatcher(cfg config.Config, r runner.Runner) *Patcher {
	return &Patcher{cfg: cfg, runner: r}
}

// Ensure appends the loopback mapping when the host has no entry. Never
// appends a duplicate.
func (p *Patcher) Ensure(ctx context.Context) error {
	present, err := p.entryPresent()
	if err != nil {
		return err
	}
	if present {
		slog.Info("hosts entry present",
			slog.String("host", p.cfg.Host),
			slog.String("file", p.cfg.HostsFile))
		return nil
	}

	slog.Info("adding hosts entry",
		slog.String("host", p.cfg.Host),
		slog.String("file", p.cfg.HostsFile))

	ctx, cancel := context.WithTimeout(ctx, defaults.HostCommandTimeout)
	defer cancel()

	// tee -a appends as root while the entry arrives on stdin.
	if _, err := p.runner.Run(ctx, runner.Command{
		Name:  "sudo",
		Args:  []string{"tee", "-a", p.cfg.HostsFile},
		Stdin: strings.NewReader(fmt.Sprintf("127.0.0.1 %s\n", p.cfg.Host)),
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to append %s to %s", p.cfg.Host, p.cfg.HostsFile), err)
	}
	return nil
}

// Remove strips the host's entry, leaving a .bak copy of the file beside the
// original. Absence is not an error.
func (p *Patcher) Remove(ctx context.Context) error {
	present, err := p.entryPresent()
	if err != nil {
		return err
	}
	if !present {
		slog.Info("hosts entry already absent",
			slog.String("host", p.cfg.Host),
			slog.String("file", p.cfg.HostsFile))
		return nil
	}

	slog.Info("removing hosts entry",
		slog.String("host", p.cfg.Host),
		slog.String("file", p.cfg.HostsFile))

	ctx, cancel := context.WithTimeout(ctx, defaults.HostCommandTimeout)
	defer cancel()

	escaped := strings.ReplaceAll(p.cfg.Host, ".", `\.`)
	if _, err := p.runner.Run(ctx, runner.Command{
		Name: "sudo",
		Args: []string{"sed", "-i.bak", fmt.Sprintf("/%s/d", escaped), p.cfg.HostsFile},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to remove %s from %s", p.cfg.Host, p.cfg.HostsFile), err)
	}
	return nil
}

// entryPresent scans the resolution file for the host. Hostname fields start
// at the second column; comment lines do not count.
func (p *Patcher) entryPresent() (bool, error) {
	raw, err := os.ReadFile(p.cfg.HostsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, serrors.Wrap(serrors.ErrCodeInternal,
			fmt.Sprintf("failed to read %s", p.cfg.HostsFile), err)
	}

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		for _, field := range fields[1:] {
			if field == p.cfg.Host {
				return true, nil
			}
		}
	}
	return false, nil
}
