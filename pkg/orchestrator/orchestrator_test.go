package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/oikos/pkg/config"
)

// journal records component invocations in order and fails the ones a test
// scripts to fail.
type journal struct {
	calls []string
	fail  map[string]error
}

func (j *journal) record(name string) error {
	j.calls = append(j.calls, name)
	return j.fail[name]
}

type fakePreflight struct{ j *journal }

func (f fakePreflight) Check(context.Context) error { return f.j.record("preflight.Check") }

type fakeRegistry struct{ j *journal }

func (f fakeRegistry) Ensure(context.Context) error { return f.j.record("registry.Ensure") }
func (f fakeRegistry) Remove(context.Context) error { return f.j.record("registry.Remove") }

type fakeCluster struct{ j *journal }

func (f fakeCluster) Ensure(context.Context) error { return f.j.record("cluster.Ensure") }
func (f fakeCluster) Delete(context.Context) error { return f.j.record("cluster.Delete") }

type fakeImage struct{ j *journal }

func (f fakeImage) BuildAndPush(context.Context) error { return f.j.record("image.BuildAndPush") }

type fakeCerts struct{ j *journal }

func (f fakeCerts) Ensure(context.Context) error { return f.j.record("certs.Ensure") }

type fakeIngress struct{ j *journal }

func (f fakeIngress) Ensure(context.Context) error { return f.j.record("ingress.Ensure") }

type fakeDeploy struct{ j *journal }

func (f fakeDeploy) Apply(context.Context) error { return f.j.record("deploy.Apply") }

type fakeHosts struct{ j *journal }

func (f fakeHosts) Ensure(context.Context) error { return f.j.record("hosts.Ensure") }
func (f fakeHosts) Remove(context.Context) error { return f.j.record("hosts.Remove") }

func newOrchestrator(fail map[string]error) (*Orchestrator, *journal) {
	j := &journal{fail: fail}
	o := New(config.Default(), Components{
		Preflight: fakePreflight{j},
		Registry:  fakeRegistry{j},
		Cluster:   fakeCluster{j},
		Image:     fakeImage{j},
		Certs:     fakeCerts{j},
		Ingress:   fakeIngress{j},
		Deploy:    fakeDeploy{j},
		Hosts:     fakeHosts{j},
	})
	return o, j
}

var upOrder = []string{
	"preflight.Check",
	"registry.Ensure",
	"cluster.Ensure",
	"image.BuildAndPush",
	"certs.Ensure",
	"ingress.Ensure",
	"deploy.Apply",
	"hosts.Ensure",
}

var downOrder = []string{
	"cluster.Delete",
	"registry.Remove",
	"hosts.Remove",
}

func TestUpRunsStepsInOrder(t *testing.T) {
	o, j := newOrchestrator(nil)

	require.NoError(t, o.Up(context.Background()))
	require.Equal(t, upOrder, j.calls)
}

func TestUpAbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("kind create failed")
	o, j := newOrchestrator(map[string]error{"cluster.Ensure": boom})

	err := o.Up(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "step cluster failed")

	require.Equal(t, []string{"preflight.Check", "registry.Ensure", "cluster.Ensure"}, j.calls,
		"no step after the failed one may run")
}

func TestDownRunsStepsInOrder(t *testing.T) {
	o, j := newOrchestrator(nil)

	require.NoError(t, o.Down(context.Background()))
	require.Equal(t, downOrder, j.calls)
}

func TestDownAbortsOnFailure(t *testing.T) {
	boom := errors.New("docker rm failed")
	o, j := newOrchestrator(map[string]error{"registry.Remove": boom})

	err := o.Down(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"cluster.Delete", "registry.Remove"}, j.calls)
}

func TestResetRunsDownThenUp(t *testing.T) {
	o, j := newOrchestrator(nil)

	require.NoError(t, o.Reset(context.Background()))

	want := make([]string, 0, len(downOrder)+len(upOrder))
	want = append(want, downOrder...)
	want = append(want, upOrder...)
	require.Equal(t, want, j.calls)
}

func TestRenewTLSRunsCertificateStepOnly(t *testing.T) {
	o, j := newOrchestrator(nil)

	require.NoError(t, o.RenewTLS(context.Background()))
	require.Equal(t, []string{"certs.Ensure"}, j.calls)
}

func TestNewDefaultWiresAllComponents(t *testing.T) {
	o := NewDefault(config.Default())

	require.NotNil(t, o.c.Preflight)
	require.NotNil(t, o.c.Registry)
	require.NotNil(t, o.c.Cluster)
	require.NotNil(t, o.c.Image)
	require.NotNil(t, o.c.Certs)
	require.NotNil(t, o.c.Ingress)
	require.NotNil(t, o.c.Deploy)
	require.NotNil(t, o.c.Hosts)
}
