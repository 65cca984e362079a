package deploy

import (
	"context"
	"log/slog"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/k8s/client"
)

// Deployer materializes the application's runtime objects in the target
// namespace. Every object is applied as full desired state: created when
// absent, otherwise overwritten in place. Nothing here waits on rollout; the
// applied state converges on its own.
type Deployer struct {
	cfg    config.Config
	client client.Provider
}

// NewDeployer creates a Deployer.
func NewDeployer(cfg config.Config, p client.Provider) *Deployer {
	return &Deployer{cfg: cfg, client: p}
}

// Apply reconciles the environment sources, workload, service, and ingress
// route as one batch, in dependency order.
func (d *Deployer) Apply(ctx context.Context) error {
	clientset, err := d.client()
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to get kubernetes client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.K8sApplyTimeout)
	defer cancel()

	slog.Info("applying application objects",
		slog.String("app", d.cfg.AppName),
		slog.String("namespace", d.cfg.Namespace),
		slog.String("image", d.cfg.RegistryImageRef()))

	if err := d.ensureConfigMap(ctx, clientset); err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to ensure config map", err)
	}

	if err := d.ensureSecret(ctx, clientset); err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to ensure environment secret", err)
	}

	if err := d.ensureDeployment(ctx, clientset); err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to ensure deployment", err)
	}

	if err := d.ensureService(ctx, clientset); err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to ensure service", err)
	}

	if err := d.ensureIngress(ctx, clientset); err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to ensure ingress route", err)
	}

	slog.Info("application objects applied",
		slog.String("host", d.cfg.Host),
		slog.String("service", d.cfg.AppName))
	return nil
}

// appLabels is the shared label set selecting the workload's pods.
func (d *Deployer) appLabels() map[string]string {
	return map[string]string{
		"app.kubernetes.io/name": d.cfg.AppName,
	}
}

func (d *Deployer) configMapName() string {
	return d.cfg.AppName + "-config"
}

func (d *Deployer) secretName() string {
	return d.cfg.AppName + "-env"
}
