// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"path/filepath"

	"github.com/NVIDIA/oikos/pkg/defaults"
)

// DeployTarget identifies where the environment is reconciled. It is decided
// once at configuration load; components branch on the enum, never on string
// inspection of addresses.
type DeployTarget string

const (
	// TargetLocal reconciles a disposable kind cluster with a local registry.
	TargetLocal DeployTarget = "local"

	// TargetManagedCloud is reserved for the hosted pipeline path. It is not
	// implemented by this tool and is rejected at load time.
	TargetManagedCloud DeployTarget = "managed-cloud"
)

// Tool names a required external executable and, optionally, the minimum
// version it must report.
type Tool struct {
	Name       string `yaml:"name"`
	MinVersion string `yaml:"minVersion,omitempty"`
}

// Config is the value object handed to every component. All external resource
// names, addresses, and file paths derive from it; nothing reads ambient
// globals.
type Config struct {
	// ClusterName is the kind cluster name. The kubeconfig context becomes
	// "kind-<ClusterName>".
	ClusterName string `yaml:"clusterName"`

	// RegistryName is the registry container name on the docker host.
	RegistryName string `yaml:"registryName"`

	// RegistryPort is the loopback host port the registry listens on.
	RegistryPort int `yaml:"registryPort"`

	// RegistryImage is the image backing the registry container.
	RegistryImage string `yaml:"registryImage"`

	// Namespace is where the application and its TLS secret live.
	Namespace string `yaml:"namespace"`

	// Host is the TLS hostname served by the ingress route and mapped to
	// loopback in the hosts file.
	Host string `yaml:"host"`

	// AppName names the workload, service, ingress, and image repository.
	AppName string `yaml:"appName"`

	// AppDir is the application source directory probed for build
	// descriptors (gradlew, Dockerfile).
	AppDir string `yaml:"appDir"`

	// ContainerPort is the port the application container listens on.
	ContainerPort int32 `yaml:"containerPort"`

	// Replicas is the workload replica count.
	Replicas int32 `yaml:"replicas"`

	// CertDir holds the generated key and certificate files.
	CertDir string `yaml:"certDir"`

	// TLSSecretName is the kubernetes.io/tls secret kept equal to the
	// on-disk pair.
	TLSSecretName string `yaml:"tlsSecretName"`

	// IngressManifest is the pinned ingress-nginx manifest applied when the
	// controller is absent.
	IngressManifest string `yaml:"ingressManifest"`

	// HostsFile is the system resolution file. Overridable for tests.
	HostsFile string `yaml:"hostsFile"`

	// Kubeconfig is an explicit kubeconfig path. Empty means standard
	// discovery (KUBECONFIG, then ~/.kube/config).
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	// Target selects the reconciliation target. Only TargetLocal is
	// supported.
	Target DeployTarget `yaml:"target"`

	// RequiredTools are verified by preflight before any stateful action.
	RequiredTools []Tool `yaml:"requiredTools,omitempty"`
}

// Default returns the fixed configuration constants for the local
// environment. Operators overlay individual fields from an oikos.yaml file;
// there are no per-verb flags.
func Default() Config {
	return Config{
		ClusterName:     "oikos",
		RegistryName:    "oikos-registry",
		RegistryPort:    5001,
		RegistryImage:   "registry:2",
		Namespace:       "oikos",
		Host:            "oikos.local",
		AppName:         "oikos-app",
		AppDir:          ".",
		ContainerPort:   8080,
		Replicas:        1,
		CertDir:         "certs",
		TLSSecretName:   "oikos-tls",
		IngressManifest: "https://raw.githubusercontent.com/kubernetes/ingress-nginx/controller-v1.12.1/deploy/static/provider/kind/deploy.yaml",
		HostsFile:       "/etc/hosts",
		Target:          TargetLocal,
		RequiredTools: []Tool{
			{Name: "docker", MinVersion: "20.10"},
			{Name: "kind", MinVersion: "0.20"},
			{Name: "kubectl", MinVersion: "1.27"},
			{Name: "openssl"},
			{Name: "sudo"},
		},
	}
}

// Validate rejects configurations the reconciler cannot act on. The deploy
// target is checked here, once, so later steps never re-derive it.
func (c Config) Validate() error {
	switch c.Target {
	case TargetLocal:
		// supported
	case TargetManagedCloud:
		return fmt.Errorf("deploy target %q is not supported by this tool; only %q is", c.Target, TargetLocal)
	default:
		return fmt.Errorf("unrecognized deploy target %q (must be %q)", c.Target, TargetLocal)
	}
	if c.ClusterName == "" {
		return fmt.Errorf("clusterName must not be empty")
	}
	if c.RegistryName == "" {
		return fmt.Errorf("registryName must not be empty")
	}
	if c.RegistryPort < 1 || c.RegistryPort > 65535 {
		return fmt.Errorf("registryPort %d out of range", c.RegistryPort)
	}
	if c.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.AppName == "" {
		return fmt.Errorf("appName must not be empty")
	}
	if c.Replicas < 1 {
		return fmt.Errorf("replicas must be at least 1, got %d", c.Replicas)
	}
	return nil
}

// RegistryAddress is the registry endpoint as seen from the host,
// e.g. "localhost:5001". Image references pushed from the host use it.
func (c Config) RegistryAddress() string {
	return fmt.Sprintf("localhost:%d", c.RegistryPort)
}

// RegistryClusterEndpoint is the registry endpoint as seen from inside the
// cluster's container network, e.g. "oikos-registry:5000". The registry
// container always serves on 5000 internally regardless of the host port.
func (c Config) RegistryClusterEndpoint() string {
	return fmt.Sprintf("%s:%d", c.RegistryName, defaults.RegistryInternalPort)
}

// LocalImageRef is the image reference produced by a build before re-tagging,
// e.g. "oikos-app:latest".
func (c Config) LocalImageRef() string {
	return fmt.Sprintf("%s:%s", c.AppName, defaults.ImageTag)
}

// RegistryImageRef is the registry-qualified image reference pushed to and
// pulled from the local registry, e.g. "localhost:5001/oikos-app:latest".
func (c Config) RegistryImageRef() string {
	return fmt.Sprintf("%s/%s:%s", c.RegistryAddress(), c.AppName, defaults.ImageTag)
}

// KubeContext is the kubeconfig context kind generates for the cluster.
func (c Config) KubeContext() string {
	return "kind-" + c.ClusterName
}

// KeyPath is the on-disk private key location.
func (c Config) KeyPath() string {
	return filepath.Join(c.CertDir, "tls.key")
}

// CertPath is the on-disk certificate location.
func (c Config) CertPath() string {
	return filepath.Join(c.CertDir, "tls.crt")
}
