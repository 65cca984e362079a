package deploy

import (
	"context"
	"fmt"

	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/oikos/pkg/k8s/client"
)

// ensureIngress applies the TLS-terminated route from the configured host to
// the service.
func (d *Deployer) ensureIngress(ctx context.Context, clientset client.Interface) error {
	desired := d.buildIngress()
	ingresses := clientset.NetworkingV1().Ingresses(d.cfg.Namespace)

	_, err := ingresses.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create Ingress %s: %w", desired.Name, err)
	}

	existing, err := ingresses.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get Ingress %s: %w", desired.Name, err)
	}
	existing.Labels = desired.Labels
	existing.Spec = desired.Spec
	if _, err := ingresses.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update Ingress %s: %w", desired.Name, err)
	}
	return nil
}

// buildIngress constructs the route. The TLS host and the rule host are the
// same name the hosts file maps to loopback; the certificate secret is the
// one the certificate manager maintains.
func (d *Deployer) buildIngress() *networkingv1.Ingress {
	return &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.cfg.AppName,
			Namespace: d.cfg.Namespace,
			Labels:    d.appLabels(),
		},
		Spec: networkingv1.IngressSpec{
			IngressClassName: ptr.To("nginx"),
			TLS: []networkingv1.IngressTLS{
				{
					Hosts:      []string{d.cfg.Host},
					SecretName: d.cfg.TLSSecretName,
				},
			},
			Rules: []networkingv1.IngressRule{
				{
					Host: d.cfg.Host,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     "/",
									PathType: ptr.To(networkingv1.PathTypePrefix),
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: d.cfg.AppName,
											Port: networkingv1.ServiceBackendPort{Number: servicePort},
										},
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
