package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/NVIDIA/oikos/pkg/certs"
	"github.com/NVIDIA/oikos/pkg/cluster"
	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/deploy"
	"github.com/NVIDIA/oikos/pkg/hosts"
	"github.com/NVIDIA/oikos/pkg/image"
	"github.com/NVIDIA/oikos/pkg/ingress"
	"github.com/NVIDIA/oikos/pkg/k8s/client"
	"github.com/NVIDIA/oikos/pkg/preflight"
	"github.com/NVIDIA/oikos/pkg/registry"
	"github.com/NVIDIA/oikos/pkg/runner"
)

// Each collaborator is consumed through the methods a workflow actually
// calls, so workflows are testable with recorders.
type (
	// Preflighter verifies required tools before any mutation.
	Preflighter interface {
		Check(ctx context.Context) error
	}

	// RegistryManager reconciles the local registry container.
	RegistryManager interface {
		Ensure(ctx context.Context) error
		Remove(ctx context.Context) error
	}

	// ClusterManager reconciles the local cluster.
	ClusterManager interface {
		Ensure(ctx context.Context) error
		Delete(ctx context.Context) error
	}

	// ImageBuilder builds the application image and pushes it to the
	// registry.
	ImageBuilder interface {
		BuildAndPush(ctx context.Context) error
	}

	// CertManager reconciles the TLS pair and its cluster secret.
	CertManager interface {
		Ensure(ctx context.Context) error
	}

	// IngressManager installs the ingress controller.
	IngressManager interface {
		Ensure(ctx context.Context) error
	}

	// DeployApplier materializes the application objects.
	DeployApplier interface {
		Apply(ctx context.Context) error
	}

	// HostsPatcher maintains the loopback hosts entry.
	HostsPatcher interface {
		Ensure(ctx context.Context) error
		Remove(ctx context.Context) error
	}
)

// Components are the collaborators a workflow sequences.
type Components struct {
	Preflight Preflighter
	Registry  RegistryManager
	Cluster   ClusterManager
	Image     ImageBuilder
	Certs     CertManager
	Ingress   IngressManager
	Deploy    DeployApplier
	Hosts     HostsPatcher
}

// Orchestrator sequences the components into operator workflows. It holds no
// state between runs; all state lives in the external resources themselves.
type Orchestrator struct {
	cfg config.Config
	c   Components
}

// New creates an Orchestrator from explicit components.
func New(cfg config.Config, c Components) *Orchestrator {
	return &Orchestrator{cfg: cfg, c: c}
}

// NewDefault wires the production components: a real command runner and a
// lazy client provider bound to the cluster's kubeconfig context. The
// registry manager doubles as the image builder's tag verifier.
func NewDefault(cfg config.Config) *Orchestrator {
	r := runner.NewLocal()
	provider := client.NewProvider(cfg.Kubeconfig, cfg.KubeContext())
	reg := registry.NewManager(cfg, r)

	return New(cfg, Components{
		Preflight: preflight.New(cfg, r),
		Registry:  reg,
		Cluster:   cluster.NewManager(cfg, r, provider),
		Image:     image.NewBuilder(cfg, r, reg),
		Certs:     certs.NewManager(cfg, r, provider),
		Ingress:   ingress.NewManager(cfg, r, provider),
		Deploy:    deploy.NewDeployer(cfg, provider),
		Hosts:     hosts.NewPatcher(cfg, r),
	})
}

type step struct {
	name string
	run  func(context.Context) error
}

// upSteps is the fixed bring-up order. A later step may assume everything
// before it succeeded.
func (o *Orchestrator) upSteps() []step {
	return []step{
		{"preflight", o.c.Preflight.Check},
		{"registry", o.c.Registry.Ensure},
		{"cluster", o.c.Cluster.Ensure},
		{"image", o.c.Image.BuildAndPush},
		{"certificate", o.c.Certs.Ensure},
		{"ingress", o.c.Ingress.Ensure},
		{"deploy", o.c.Deploy.Apply},
		{"hosts", o.c.Hosts.Ensure},
	}
}

func (o *Orchestrator) downSteps() []step {
	return []step{
		{"cluster-delete", o.c.Cluster.Delete},
		{"registry-remove", o.c.Registry.Remove},
		{"hosts-remove", o.c.Hosts.Remove},
	}
}

// Up brings the environment to the fully-running state.
func (o *Orchestrator) Up(ctx context.Context) error {
	return o.run(ctx, "up", o.upSteps())
}

// Down tears the environment down. Component removals tolerate absence, so
// Down converges from any partial state.
func (o *Orchestrator) Down(ctx context.Context) error {
	return o.run(ctx, "down", o.downSteps())
}

// Reset tears down and brings back up under a single run id.
func (o *Orchestrator) Reset(ctx context.Context) error {
	return o.run(ctx, "reset", append(o.downSteps(), o.upSteps()...))
}

// RenewTLS runs the certificate step alone.
func (o *Orchestrator) RenewTLS(ctx context.Context) error {
	return o.run(ctx, "renew-tls", []step{{"certificate", o.c.Certs.Ensure}})
}

// run executes steps in order, aborting on the first failure. There is no
// rollback; re-running the workflow is the recovery path, which is safe
// because every step is idempotent.
func (o *Orchestrator) run(ctx context.Context, workflow string, steps []step) error {
	log := slog.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("workflow", workflow))

	for i, s := range steps {
		log.Info("step starting",
			slog.String("step", s.name),
			slog.Int("position", i+1),
			slog.Int("steps", len(steps)))

		if err := s.run(ctx); err != nil {
			log.Error("step failed",
				slog.String("step", s.name),
				slog.String("error", err.Error()))
			return fmt.Errorf("%s: step %s failed: %w", workflow, s.name, err)
		}

		log.Info("step complete", slog.String("step", s.name))
	}

	log.Info("workflow complete")
	return nil
}
