/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/runner"
)

// Manager ensures the local image registry container is running and serving
// the Distribution API, and removes it on teardown.
type Manager struct {
	cfg    config.Config
	runner runner.Runner

	readyTimeout time.Duration
	pollInterval time.Duration
}

// NewManager creates a registry Manager for the configured container.
func NewManager(cfg config.Config, r runner.Runner) *Manager {
	return &Manager{
		cfg:          cfg,
		runner:       r,
		readyTimeout: defaults.RegistryReadyTimeout,
		pollInterval: defaults.RegistryPollInterval,
	}
}

// Ensure brings the registry container to the running state. An already
// running container is left untouched; a stopped one is started; a missing
// one is created with an always-restart policy, bound to the loopback
// interface only. Afterwards the Distribution API is probed until it answers,
// since a running container is not yet a serving registry.
func (m *Manager) Ensure(ctx context.Context) error {
	running, exists, err := m.containerState(ctx)
	if err != nil {
		return err
	}

	switch {
	case running:
		slog.Info("registry already running", slog.String("name", m.cfg.RegistryName))
	case exists:
		slog.Info("starting stopped registry container", slog.String("name", m.cfg.RegistryName))
		if err := m.startContainer(ctx); err != nil {
			return err
		}
	default:
		slog.Info("creating registry container",
			slog.String("name", m.cfg.RegistryName),
			slog.String("address", m.cfg.RegistryAddress()))
		if err := m.createContainer(ctx); err != nil {
			return err
		}
	}

	return m.waitReachable(ctx)
}

// Remove force-removes the registry container. Absence is not an error;
// teardown must be safe to repeat.
func (m *Manager) Remove(ctx context.Context) error {
	_, exists, err := m.containerState(ctx)
	if err != nil {
		return err
	}
	if !exists {
		slog.Info("registry container not present, nothing to remove",
			slog.String("name", m.cfg.RegistryName))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.RegistryStartTimeout)
	defer cancel()

	if _, err := m.runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"rm", "-f", m.cfg.RegistryName},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to remove registry container %s", m.cfg.RegistryName), err)
	}

	slog.Info("registry container removed", slog.String("name", m.cfg.RegistryName))
	return nil
}

// VerifyTag resolves a tag in the given repository of the local registry and
// returns its OCI descriptor. Used after a push to confirm the registry
// actually serves what was pushed.
func (m *Manager) VerifyTag(ctx context.Context, repository, tag string) (ociv1.Descriptor, error) {
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", m.cfg.RegistryAddress(), repository))
	if err != nil {
		return ociv1.Descriptor{}, serrors.Wrap(serrors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid repository reference %s/%s", m.cfg.RegistryAddress(), repository), err)
	}
	repo.PlainHTTP = true

	desc, err := repo.Resolve(ctx, tag)
	if err != nil {
		return ociv1.Descriptor{}, serrors.Wrap(serrors.ErrCodeNotFound,
			fmt.Sprintf("tag %s not resolvable in %s/%s", tag, m.cfg.RegistryAddress(), repository), err)
	}
	return desc, nil
}

// containerState reports whether the registry container exists and whether it
// is currently running. The name filter is a substring match on the docker
// side, so the output is re-checked for exact name equality.
func (m *Manager) containerState(ctx context.Context) (running, exists bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.ClusterQueryTimeout)
	defer cancel()

	res, err := m.runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"ps", "-a", "--filter", "name=" + m.cfg.RegistryName, "--format", "{{.Names}}\t{{.State}}"},
	})
	if err != nil {
		return false, false, serrors.Wrap(serrors.ErrCodeCommandFailed,
			"failed to query registry container state", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] != m.cfg.RegistryName {
			continue
		}
		return fields[1] == "running", true, nil
	}
	return false, false, nil
}

func (m *Manager) startContainer(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.RegistryStartTimeout)
	defer cancel()

	if _, err := m.runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"start", m.cfg.RegistryName},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to start registry container %s", m.cfg.RegistryName), err)
	}
	return nil
}

func (m *Manager) createContainer(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.RegistryStartTimeout)
	defer cancel()

	publish := fmt.Sprintf("127.0.0.1:%d:%d", m.cfg.RegistryPort, defaults.RegistryInternalPort)
	if _, err := m.runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{
			"run", "-d",
			"--restart=always",
			"-p", publish,
			"--name", m.cfg.RegistryName,
			m.cfg.RegistryImage,
		},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to create registry container %s", m.cfg.RegistryName), err)
	}
	return nil
}

// waitReachable polls the Distribution API until it answers or the readiness
// window closes. A foreign process squatting the port fails the ping and
// surfaces here.
func (m *Manager) waitReachable(ctx context.Context) error {
	reg, err := remote.NewRegistry(m.cfg.RegistryAddress())
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid registry address %s", m.cfg.RegistryAddress()), err)
	}
	reg.PlainHTTP = true

	var lastErr error
	err = wait.PollUntilContextTimeout(ctx, m.pollInterval, m.readyTimeout, true,
		func(ctx context.Context) (bool, error) {
			if pingErr := reg.Ping(ctx); pingErr != nil {
				lastErr = pingErr
				return false, nil
			}
			return true, nil
		})
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeTimeout,
			fmt.Sprintf("registry at %s did not become reachable (last error: %v)", m.cfg.RegistryAddress(), lastErr), err)
	}

	slog.Debug("registry reachable", slog.String("address", m.cfg.RegistryAddress()))
	return nil
}
