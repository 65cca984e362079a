package deploy

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/NVIDIA/oikos/pkg/k8s/client"
)

// servicePort is the port the ingress route targets; the service maps it to
// the container port.
const servicePort = 80

// ensureService applies the service fronting the workload. ClusterIP and
// ClusterIPs are allocated by the API server and immutable, so an overwrite
// carries them over from the live object.
func (d *Deployer) ensureService(ctx context.Context, clientset client.Interface) error {
	desired := d.buildService()
	services := clientset.CoreV1().Services(d.cfg.Namespace)

	_, err := services.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create Service %s: %w", desired.Name, err)
	}

	existing, err := services.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get Service %s: %w", desired.Name, err)
	}
	desired.Spec.ClusterIP = existing.Spec.ClusterIP
	desired.Spec.ClusterIPs = existing.Spec.ClusterIPs
	existing.Labels = desired.Labels
	existing.Spec = desired.Spec
	if _, err := services.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update Service %s: %w", desired.Name, err)
	}
	return nil
}

func (d *Deployer) buildService() *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.cfg.AppName,
			Namespace: d.cfg.Namespace,
			Labels:    d.appLabels(),
		},
		Spec: corev1.ServiceSpec{
			Selector: d.appLabels(),
			Ports: []corev1.ServicePort{
				{
					Name:       "http",
					Port:       servicePort,
					TargetPort: intstr.FromInt32(d.cfg.ContainerPort),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
}
