package ingress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/k8s/client"
	"github.com/NVIDIA/oikos/pkg/runner"
)

// ingress-nginx installs into its own fixed namespace; its presence is the
// install marker.
const (
	controllerNamespace = "ingress-nginx"
	controllerName      = "ingress-nginx-controller"
)

// Manager installs the ingress-nginx controller from the pinned manifest and
// waits for it to become able to admit routes.
type Manager struct {
	cfg    config.Config
	runner runner.Runner
	client client.Provider

	readyTimeout time.Duration
	pollInterval time.Duration
}

// NewManager creates an ingress Manager.
func NewManager(cfg config.Config, r runner.Runner, p client.Provider) *Manager {
	return &Manager{
		cfg:          cfg,
		runner:       r,
		client:       p,
		readyTimeout: defaults.IngressReadyTimeout,
		pollInterval: defaults.IngressPollInterval,
	}
}

// Ensure installs the controller if it is absent. An existing install is
// trusted as ready and skips the wait as well; only a fresh install blocks
// until the controller deployment reports Available.
func (m *Manager) Ensure(ctx context.Context) error {
	clientset, err := m.client()
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to get kubernetes client", err)
	}

	installed, err := m.installed(ctx, clientset)
	if err != nil {
		return err
	}
	if installed {
		slog.Info("ingress controller already installed",
			slog.String("namespace", controllerNamespace))
		return nil
	}

	if err := m.install(ctx); err != nil {
		return err
	}
	return m.waitReady(ctx, clientset)
}

func (m *Manager) installed(ctx context.Context, clientset client.Interface) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.K8sQueryTimeout)
	defer cancel()

	_, err := clientset.CoreV1().Namespaces().Get(ctx, controllerNamespace, metav1.GetOptions{})
	if err == nil {
		return true, nil
	}
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return false, serrors.Wrap(serrors.ErrCodeKubernetes,
		fmt.Sprintf("failed to query namespace %s", controllerNamespace), err)
}

func (m *Manager) install(ctx context.Context) error {
	slog.Info("installing ingress controller",
		slog.String("manifest", m.cfg.IngressManifest))

	ctx, cancel := context.WithTimeout(ctx, defaults.K8sApplyTimeout)
	defer cancel()

	if _, err := m.runner.Run(ctx, runner.Command{
		Name:   "kubectl",
		Args:   []string{"apply", "-f", m.cfg.IngressManifest, "--context", m.cfg.KubeContext()},
		Stream: true,
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed, "failed to apply ingress manifest", err)
	}
	return nil
}

// waitReady polls the controller deployment until it reports Available. Get
// errors are retried, not surfaced: the controller namespace and webhooks are
// still settling right after the apply.
func (m *Manager) waitReady(ctx context.Context, clientset client.Interface) error {
	slog.Info("waiting for ingress controller",
		slog.String("deployment", controllerName),
		slog.Duration("timeout", m.readyTimeout))

	var lastState string
	err := wait.PollUntilContextTimeout(ctx, m.pollInterval, m.readyTimeout, true,
		func(ctx context.Context) (bool, error) {
			dep, err := clientset.AppsV1().Deployments(controllerNamespace).
				Get(ctx, controllerName, metav1.GetOptions{})
			if err != nil {
				lastState = err.Error()
				return false, nil
			}
			for _, cond := range dep.Status.Conditions {
				if cond.Type == appsv1.DeploymentAvailable && cond.Status == corev1.ConditionTrue {
					return true, nil
				}
			}
			lastState = fmt.Sprintf("%d/%d replicas ready", dep.Status.ReadyReplicas, dep.Status.Replicas)
			return false, nil
		})
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeTimeout,
			fmt.Sprintf("ingress controller not ready after %s (last state: %s)", m.readyTimeout, lastState), err)
	}

	slog.Info("ingress controller ready")
	return nil
}
