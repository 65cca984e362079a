package deploy

import (
	"context"
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/oikos/pkg/k8s/client"
)

// ensureConfigMap applies the application's non-sensitive environment source.
func (d *Deployer) ensureConfigMap(ctx context.Context, clientset client.Interface) error {
	desired := d.buildConfigMap()
	configMaps := clientset.CoreV1().ConfigMaps(d.cfg.Namespace)

	_, err := configMaps.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create ConfigMap %s: %w", desired.Name, err)
	}

	existing, err := configMaps.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get ConfigMap %s: %w", desired.Name, err)
	}
	existing.Labels = desired.Labels
	existing.Data = desired.Data
	if _, err := configMaps.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s: %w", desired.Name, err)
	}
	return nil
}

func (d *Deployer) buildConfigMap() *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.configMapName(),
			Namespace: d.cfg.Namespace,
			Labels:    d.appLabels(),
		},
		Data: map[string]string{
			"APP_ENVIRONMENT": "local",
			"APP_HOST":        d.cfg.Host,
			"APP_PORT":        strconv.Itoa(int(d.cfg.ContainerPort)),
		},
	}
}

// ensureSecret applies the application's sensitive environment source.
func (d *Deployer) ensureSecret(ctx context.Context, clientset client.Interface) error {
	desired := d.buildSecret()
	secrets := clientset.CoreV1().Secrets(d.cfg.Namespace)

	_, err := secrets.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create Secret %s: %w", desired.Name, err)
	}

	existing, err := secrets.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get Secret %s: %w", desired.Name, err)
	}
	existing.Labels = desired.Labels
	existing.Data = desired.Data
	if _, err := secrets.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update Secret %s: %w", desired.Name, err)
	}
	return nil
}

func (d *Deployer) buildSecret() *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.secretName(),
			Namespace: d.cfg.Namespace,
			Labels:    d.appLabels(),
		},
		Type: corev1.SecretTypeOpaque,
		// Fixed development placeholders. Random values would churn the
		// secret on every run.
		Data: map[string][]byte{
			"APP_SECRET_KEY": []byte("local-dev-only"),
		},
	}
}
