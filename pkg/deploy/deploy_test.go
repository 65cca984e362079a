package deploy

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	ktesting "k8s.io/client-go/testing"

	"github.com/NVIDIA/oikos/pkg/config"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/k8s/client"
)

func newDeployer(objects ...k8sruntime.Object) (*Deployer, *k8sfake.Clientset) {
	clientset := k8sfake.NewClientset(objects...)
	return NewDeployer(config.Default(), client.StaticProvider(clientset)), clientset
}

func TestApplyCreatesAllObjects(t *testing.T) {
	d, clientset := newDeployer()
	ctx := context.Background()

	require.NoError(t, d.Apply(ctx))

	cm, err := clientset.CoreV1().ConfigMaps(d.cfg.Namespace).
		Get(ctx, d.configMapName(), metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, "local", cm.Data["APP_ENVIRONMENT"])
	require.Equal(t, d.cfg.Host, cm.Data["APP_HOST"])
	require.Equal(t, "8080", cm.Data["APP_PORT"])

	secret, err := clientset.CoreV1().Secrets(d.cfg.Namespace).
		Get(ctx, d.secretName(), metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, corev1.SecretTypeOpaque, secret.Type)
	require.Equal(t, []byte("local-dev-only"), secret.Data["APP_SECRET_KEY"])

	dep, err := clientset.AppsV1().Deployments(d.cfg.Namespace).
		Get(ctx, d.cfg.AppName, metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, d.cfg.Replicas, *dep.Spec.Replicas)
	container := dep.Spec.Template.Spec.Containers[0]
	require.Equal(t, "localhost:5001/oikos-app:latest", container.Image)
	require.Equal(t, d.cfg.ContainerPort, container.Ports[0].ContainerPort)
	require.Len(t, container.EnvFrom, 2)
	require.Equal(t, d.configMapName(), container.EnvFrom[0].ConfigMapRef.Name)
	require.Equal(t, d.secretName(), container.EnvFrom[1].SecretRef.Name)

	svc, err := clientset.CoreV1().Services(d.cfg.Namespace).
		Get(ctx, d.cfg.AppName, metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, dep.Spec.Template.Labels, svc.Spec.Selector)
	require.Equal(t, int32(servicePort), svc.Spec.Ports[0].Port)
	require.Equal(t, intstr.FromInt32(d.cfg.ContainerPort), svc.Spec.Ports[0].TargetPort)

	ing, err := clientset.NetworkingV1().Ingresses(d.cfg.Namespace).
		Get(ctx, d.cfg.AppName, metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, "nginx", *ing.Spec.IngressClassName)
	require.Equal(t, []string{d.cfg.Host}, ing.Spec.TLS[0].Hosts)
	require.Equal(t, d.cfg.TLSSecretName, ing.Spec.TLS[0].SecretName)
	rule := ing.Spec.Rules[0]
	require.Equal(t, d.cfg.Host, rule.Host)
	backend := rule.HTTP.Paths[0].Backend.Service
	require.Equal(t, d.cfg.AppName, backend.Name)
	require.Equal(t, int32(servicePort), backend.Port.Number)
}

func TestApplyTwiceIsIdempotent(t *testing.T) {
	d, clientset := newDeployer()
	ctx := context.Background()

	require.NoError(t, d.Apply(ctx))
	require.NoError(t, d.Apply(ctx))

	deployments, err := clientset.AppsV1().Deployments(d.cfg.Namespace).
		List(ctx, metav1.ListOptions{})
	require.NoError(t, err)
	require.Len(t, deployments.Items, 1)

	services, err := clientset.CoreV1().Services(d.cfg.Namespace).
		List(ctx, metav1.ListOptions{})
	require.NoError(t, err)
	require.Len(t, services.Items, 1)

	ingresses, err := clientset.NetworkingV1().Ingresses(d.cfg.Namespace).
		List(ctx, metav1.ListOptions{})
	require.NoError(t, err)
	require.Len(t, ingresses.Items, 1)
}

func TestApplyPreservesServiceClusterIP(t *testing.T) {
	cfg := config.Default()
	stale := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: cfg.AppName, Namespace: cfg.Namespace},
		Spec: corev1.ServiceSpec{
			ClusterIP:  "10.96.0.42",
			ClusterIPs: []string{"10.96.0.42"},
			Selector:   map[string]string{"app": "stale"},
			Ports: []corev1.ServicePort{
				{Name: "http", Port: 80, TargetPort: intstr.FromInt32(9999)},
			},
		},
	}

	d, clientset := newDeployer(stale)
	ctx := context.Background()

	require.NoError(t, d.Apply(ctx))

	svc, err := clientset.CoreV1().Services(d.cfg.Namespace).
		Get(ctx, d.cfg.AppName, metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, "10.96.0.42", svc.Spec.ClusterIP)
	require.Equal(t, []string{"10.96.0.42"}, svc.Spec.ClusterIPs)
	require.Equal(t, d.appLabels(), svc.Spec.Selector, "stale selector must be overwritten")
	require.Equal(t, intstr.FromInt32(d.cfg.ContainerPort), svc.Spec.Ports[0].TargetPort)
}

func TestApplyOverwritesDriftedDeployment(t *testing.T) {
	cfg := config.Default()
	labels := map[string]string{"app.kubernetes.io/name": cfg.AppName}
	drifted := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: cfg.AppName, Namespace: cfg.Namespace},
		Spec: appsv1.DeploymentSpec{
			Replicas: func() *int32 { n := int32(3); return &n }(),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: cfg.AppName, Image: "old:1"}},
				},
			},
		},
	}

	d, clientset := newDeployer(drifted)
	ctx := context.Background()

	require.NoError(t, d.Apply(ctx))

	dep, err := clientset.AppsV1().Deployments(d.cfg.Namespace).
		Get(ctx, d.cfg.AppName, metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, int32(1), *dep.Spec.Replicas)
	require.Equal(t, "localhost:5001/oikos-app:latest", dep.Spec.Template.Spec.Containers[0].Image)
}

func TestApplyAbortsOnFirstFailure(t *testing.T) {
	d, clientset := newDeployer()
	clientset.PrependReactor("create", "deployments",
		func(_ ktesting.Action) (bool, k8sruntime.Object, error) {
			return true, nil, fmt.Errorf("admission webhook denied")
		})
	ctx := context.Background()

	err := d.Apply(ctx)
	require.Error(t, err)
	require.Equal(t, serrors.ErrCodeKubernetes, serrors.CodeOf(err))
	require.Contains(t, err.Error(), "failed to ensure deployment")

	// Objects before the failed step exist, objects after it do not.
	_, err = clientset.CoreV1().ConfigMaps(d.cfg.Namespace).
		Get(ctx, d.configMapName(), metav1.GetOptions{})
	require.NoError(t, err)

	_, err = clientset.CoreV1().Services(d.cfg.Namespace).
		Get(ctx, d.cfg.AppName, metav1.GetOptions{})
	require.True(t, apierrors.IsNotFound(err))
}
