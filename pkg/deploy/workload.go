package deploy

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/oikos/pkg/k8s/client"
)

// ensureDeployment applies the application workload.
func (d *Deployer) ensureDeployment(ctx context.Context, clientset client.Interface) error {
	desired := d.buildDeployment()
	deployments := clientset.AppsV1().Deployments(d.cfg.Namespace)

	_, err := deployments.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create Deployment %s: %w", desired.Name, err)
	}

	existing, err := deployments.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get Deployment %s: %w", desired.Name, err)
	}
	existing.Labels = desired.Labels
	existing.Spec = desired.Spec
	if _, err := deployments.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update Deployment %s: %w", desired.Name, err)
	}
	return nil
}

// buildDeployment constructs the workload object. The image is always
// the registry-qualified reference; the cluster pulls it through the local
// registry mirror.
func (d *Deployer) buildDeployment() *appsv1.Deployment {
	labels := d.appLabels()

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.cfg.AppName,
			Namespace: d.cfg.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(d.cfg.Replicas),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  d.cfg.AppName,
							Image: d.cfg.RegistryImageRef(),
							Ports: []corev1.ContainerPort{
								{
									Name:          "http",
									ContainerPort: d.cfg.ContainerPort,
									Protocol:      corev1.ProtocolTCP,
								},
							},
							EnvFrom: []corev1.EnvFromSource{
								{
									ConfigMapRef: &corev1.ConfigMapEnvSource{
										LocalObjectReference: corev1.LocalObjectReference{Name: d.configMapName()},
									},
								},
								{
									SecretRef: &corev1.SecretEnvSource{
										LocalObjectReference: corev1.LocalObjectReference{Name: d.secretName()},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
