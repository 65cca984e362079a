/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package image

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/runner"
)

// ErrNoBuildDefinition is returned when the application directory contains
// neither a gradle wrapper nor a Dockerfile.
var ErrNoBuildDefinition = errors.New("no build definition found")

// TagVerifier confirms a pushed tag is resolvable in the local registry.
// *registry.Manager implements it.
type TagVerifier interface {
	VerifyTag(ctx context.Context, repository, tag string) (ociv1.Descriptor, error)
}

// Builder produces the application image and publishes it to the local
// registry. The gradle buildpack path is preferred because it reuses the
// dependency cache; a plain container build is the always-correct fallback.
type Builder struct {
	cfg      config.Config
	runner   runner.Runner
	verifier TagVerifier
}

// NewBuilder creates an image Builder.
func NewBuilder(cfg config.Config, r runner.Runner, v TagVerifier) *Builder {
	return &Builder{
		cfg:      cfg,
		runner:   r,
		verifier: v,
	}
}

// BuildAndPush builds the application image by the best available strategy,
// tags it with the registry-qualified name, pushes it, and verifies the tag
// resolves. Push failures are fatal; nothing is pushed when no build
// definition exists.
func (b *Builder) BuildAndPush(ctx context.Context) error {
	if err := b.build(ctx); err != nil {
		return err
	}
	return b.push(ctx)
}

// build selects the strategy by probing for build descriptors. A failed
// gradle build falls straight back to the container build; the primary is
// never retried.
func (b *Builder) build(ctx context.Context) error {
	hasGradle := fileExists(filepath.Join(b.cfg.AppDir, "gradlew"))
	hasDockerfile := fileExists(filepath.Join(b.cfg.AppDir, "Dockerfile"))

	if !hasGradle && !hasDockerfile {
		return serrors.Wrap(serrors.ErrCodeBuildUnsupported,
			fmt.Sprintf("neither gradlew nor Dockerfile present in %s", b.cfg.AppDir),
			ErrNoBuildDefinition)
	}

	if hasGradle {
		err := b.gradleBuild(ctx)
		if err == nil {
			return nil
		}
		if !hasDockerfile {
			return err
		}
		slog.Warn("gradle build failed, falling back to container build",
			slog.String("error", err.Error()))
	}

	return b.dockerBuild(ctx)
}

func (b *Builder) gradleBuild(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ImageBuildTimeout)
	defer cancel()

	slog.Info("building image with gradle buildpacks", slog.String("image", b.cfg.LocalImageRef()))

	if _, err := b.runner.Run(ctx, runner.Command{
		Name:   "./gradlew",
		Args:   []string{"bootBuildImage", "--imageName=" + b.cfg.LocalImageRef(), "--build-cache"},
		Dir:    b.cfg.AppDir,
		Stream: true,
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed, "gradle image build failed", err)
	}
	return nil
}

func (b *Builder) dockerBuild(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ImageBuildTimeout)
	defer cancel()

	slog.Info("building image with docker", slog.String("image", b.cfg.LocalImageRef()))

	if _, err := b.runner.Run(ctx, runner.Command{
		Name:   "docker",
		Args:   []string{"build", "-t", b.cfg.LocalImageRef(), b.cfg.AppDir},
		Stream: true,
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed, "docker image build failed", err)
	}
	return nil
}

// push re-tags the locally built image with the registry-qualified reference,
// pushes it, and resolves the tag back from the registry to prove the push
// landed.
func (b *Builder) push(ctx context.Context) error {
	remoteRef := b.cfg.RegistryImageRef()
	if _, err := reference.ParseNormalizedNamed(remoteRef); err != nil {
		return serrors.Wrap(serrors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid image reference %q", remoteRef), err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.ImagePushTimeout)
	defer cancel()

	if _, err := b.runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"tag", b.cfg.LocalImageRef(), remoteRef},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to tag %s as %s", b.cfg.LocalImageRef(), remoteRef), err)
	}

	if _, err := b.runner.Run(ctx, runner.Command{
		Name:   "docker",
		Args:   []string{"push", remoteRef},
		Stream: true,
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to push %s", remoteRef), err)
	}

	desc, err := b.verifier.VerifyTag(ctx, b.cfg.AppName, defaults.ImageTag)
	if err != nil {
		return err
	}

	slog.Info("image pushed",
		slog.String("reference", remoteRef),
		slog.String("digest", desc.Digest.String()))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
