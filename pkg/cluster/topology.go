package cluster

import "fmt"

// kindClusterConfig mirrors the kind.x-k8s.io/v1alpha4 Cluster document. Only
// the fields this tool renders are modeled.
type kindClusterConfig struct {
	Kind                    string     `yaml:"kind"`
	APIVersion              string     `yaml:"apiVersion"`
	ContainerdConfigPatches []string   `yaml:"containerdConfigPatches,omitempty"`
	Nodes                   []kindNode `yaml:"nodes"`
}

type kindNode struct {
	Role                 string            `yaml:"role"`
	KubeadmConfigPatches []string          `yaml:"kubeadmConfigPatches,omitempty"`
	ExtraPortMappings    []kindPortMapping `yaml:"extraPortMappings,omitempty"`
}

type kindPortMapping struct {
	ContainerPort int32  `yaml:"containerPort"`
	HostPort      int32  `yaml:"hostPort"`
	Protocol      string `yaml:"protocol,omitempty"`
}

// topology builds the fixed single-node cluster descriptor: containerd
// mirrors the host-visible registry address to the in-network registry
// endpoint, the node carries the ingress-ready label the ingress controller
// schedules on, and web ports are mapped straight through to the host.
func (m *Manager) topology() kindClusterConfig {
	mirror := fmt.Sprintf(
		"[plugins.\"io.containerd.grpc.v1.cri\".registry.mirrors.%q]\n  endpoint = [%q]",
		m.cfg.RegistryAddress(), "http://"+m.cfg.RegistryClusterEndpoint())

	kubeadmPatch := "kind: InitConfiguration\n" +
		"nodeRegistration:\n" +
		"  kubeletExtraArgs:\n" +
		"    node-labels: \"ingress-ready=true\"\n"

	return kindClusterConfig{
		Kind:                    "Cluster",
		APIVersion:              "kind.x-k8s.io/v1alpha4",
		ContainerdConfigPatches: []string{mirror},
		Nodes: []kindNode{
			{
				Role:                 "control-plane",
				KubeadmConfigPatches: []string{kubeadmPatch},
				ExtraPortMappings: []kindPortMapping{
					{ContainerPort: 80, HostPort: 80, Protocol: "TCP"},
					{ContainerPort: 443, HostPort: 443, Protocol: "TCP"},
				},
			},
		},
	}
}
