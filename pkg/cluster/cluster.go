package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/k8s/client"
	"github.com/NVIDIA/oikos/pkg/runner"
)

const (
	// kindNetwork is the docker network kind attaches all node containers to.
	kindNetwork = "kind"

	// registryHostingConfigMap is the well-known discovery object that
	// advertises a local registry to cluster tooling.
	registryHostingConfigMap = "local-registry-hosting"

	registryHostingHelpURL = "https://kind.sigs.k8s.io/docs/user/local-registry/"
)

// Manager ensures the kind cluster exists, is joined to the registry's docker
// network, and advertises the registry through the well-known discovery
// ConfigMap. It also deletes the cluster on teardown.
type Manager struct {
	cfg    config.Config
	runner runner.Runner
	client client.Provider
}

// NewManager creates a cluster Manager. The client provider is resolved
// lazily because the cluster's kubeconfig context does not exist until the
// cluster has been created.
func NewManager(cfg config.Config, r runner.Runner, p client.Provider) *Manager {
	return &Manager{
		cfg:    cfg,
		runner: r,
		client: p,
	}
}

// Ensure brings the cluster to its target state: present, networked to the
// registry, and advertising it. An existing cluster is left untouched;
// creation failure is fatal for the run. The network join and the discovery
// ConfigMap are reconciled on every call regardless of whether the cluster
// was just created.
func (m *Manager) Ensure(ctx context.Context) error {
	exists, err := m.clusterExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		slog.Info("cluster already exists", slog.String("name", m.cfg.ClusterName))
	} else {
		if err := m.create(ctx); err != nil {
			return err
		}
	}

	if err := m.joinRegistryNetwork(ctx); err != nil {
		return err
	}
	return m.applyRegistryHosting(ctx)
}

// Delete removes the cluster. Absence is not an error.
func (m *Manager) Delete(ctx context.Context) error {
	exists, err := m.clusterExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		slog.Info("cluster not present, nothing to delete", slog.String("name", m.cfg.ClusterName))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.ClusterDeleteTimeout)
	defer cancel()

	if _, err := m.runner.Run(ctx, runner.Command{
		Name: "kind",
		Args: []string{"delete", "cluster", "--name", m.cfg.ClusterName},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to delete cluster %s", m.cfg.ClusterName), err)
	}

	slog.Info("cluster deleted", slog.String("name", m.cfg.ClusterName))
	return nil
}

// clusterExists lists kind clusters and looks for an exact name match.
func (m *Manager) clusterExists(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.ClusterQueryTimeout)
	defer cancel()

	res, err := m.runner.Run(ctx, runner.Command{
		Name: "kind",
		Args: []string{"get", "clusters"},
	})
	if err != nil {
		return false, serrors.Wrap(serrors.ErrCodeCommandFailed, "failed to list kind clusters", err)
	}

	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) == m.cfg.ClusterName {
			return true, nil
		}
	}
	return false, nil
}

// create renders the cluster topology and feeds it to kind on stdin.
func (m *Manager) create(ctx context.Context) error {
	doc, err := yaml.Marshal(m.topology())
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInternal, "failed to render cluster topology", err)
	}

	slog.Info("creating cluster", slog.String("name", m.cfg.ClusterName))

	ctx, cancel := context.WithTimeout(ctx, defaults.ClusterCreateTimeout)
	defer cancel()

	if _, err := m.runner.Run(ctx, runner.Command{
		Name:   "kind",
		Args:   []string{"create", "cluster", "--name", m.cfg.ClusterName, "--config", "-"},
		Stdin:  doc,
		Stream: true,
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to create cluster %s", m.cfg.ClusterName), err)
	}

	slog.Info("cluster created", slog.String("name", m.cfg.ClusterName))
	return nil
}

// joinRegistryNetwork connects the registry container to the kind network so
// node containers can pull from it by name. The membership query runs first;
// an already-joined registry is left alone and any other failure is fatal.
func (m *Manager) joinRegistryNetwork(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ClusterQueryTimeout)
	defer cancel()

	res, err := m.runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"inspect", "-f", "{{json .NetworkSettings.Networks}}", m.cfg.RegistryName},
	})
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to inspect networks of %s", m.cfg.RegistryName), err)
	}

	var networks map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(res.Stdout)), &networks); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to parse network membership of %s", m.cfg.RegistryName), err)
	}

	if _, joined := networks[kindNetwork]; joined {
		slog.Debug("registry already joined to kind network", slog.String("name", m.cfg.RegistryName))
		return nil
	}

	if _, err := m.runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"network", "connect", kindNetwork, m.cfg.RegistryName},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed,
			fmt.Sprintf("failed to connect %s to the %s network", m.cfg.RegistryName, kindNetwork), err)
	}

	slog.Info("registry joined to kind network", slog.String("name", m.cfg.RegistryName))
	return nil
}

// applyRegistryHosting overwrites the local-registry-hosting discovery
// ConfigMap in kube-public on every run so it can never drift from the
// configured registry address.
func (m *Manager) applyRegistryHosting(ctx context.Context) error {
	clientset, err := m.client()
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to get kubernetes client", err)
	}

	hosting, err := yaml.Marshal(struct {
		Host string `yaml:"host"`
		Help string `yaml:"help"`
	}{
		Host: m.cfg.RegistryAddress(),
		Help: registryHostingHelpURL,
	})
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInternal, "failed to render registry hosting record", err)
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      registryHostingConfigMap,
			Namespace: metav1.NamespacePublic,
		},
		Data: map[string]string{
			"localRegistryHosting.v1": string(hosting),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.K8sApplyTimeout)
	defer cancel()

	cms := clientset.CoreV1().ConfigMaps(metav1.NamespacePublic)
	if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
		if !apierrors.IsAlreadyExists(err) {
			return serrors.Wrap(serrors.ErrCodeKubernetes,
				fmt.Sprintf("failed to create %s ConfigMap", registryHostingConfigMap), err)
		}

		existing, getErr := cms.Get(ctx, cm.Name, metav1.GetOptions{})
		if getErr != nil {
			return serrors.Wrap(serrors.ErrCodeKubernetes,
				fmt.Sprintf("failed to get %s ConfigMap", registryHostingConfigMap), getErr)
		}
		existing.Data = cm.Data
		if _, updErr := cms.Update(ctx, existing, metav1.UpdateOptions{}); updErr != nil {
			return serrors.Wrap(serrors.ErrCodeKubernetes,
				fmt.Sprintf("failed to update %s ConfigMap", registryHostingConfigMap), updErr)
		}
	}

	slog.Debug("registry hosting record applied", slog.String("host", m.cfg.RegistryAddress()))
	return nil
}
