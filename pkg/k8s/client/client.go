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

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in tests.
// This enables using fake.NewClientset() which returns kubernetes.Interface.
type Interface = kubernetes.Interface

// Provider hands out a Kubernetes client, building it on first call and
// returning the cached client afterwards. Components hold a Provider instead
// of a client so they can be wired up before the cluster exists; the
// kubeconfig context for a kind cluster is only written once the cluster has
// been created, so construction must wait until the first actual API call.
type Provider func() (Interface, error)

// NewProvider returns a memoized Provider bound to the given kubeconfig path
// and context name. Both may be empty; see Build for the discovery rules.
//
// The returned Provider is safe for concurrent use. Construction happens at
// most once; every call returns the same client and error.
func NewProvider(kubeconfig, kubeContext string) Provider {
	var (
		once   sync.Once
		cached Interface
		err    error
	)
	return func() (Interface, error) {
		once.Do(func() {
			cached, err = Build(kubeconfig, kubeContext)
		})
		return cached, err
	}
}

// StaticProvider wraps an already-built client in a Provider. Tests use this
// to hand fake clientsets to components that expect lazy construction.
func StaticProvider(c Interface) Provider {
	return func() (Interface, error) { return c, nil }
}

// Build creates a Kubernetes client from the given kubeconfig file, selecting
// the named context when kubeContext is non-empty.
//
// When kubeconfig is empty, configuration is discovered from:
//  1. KUBECONFIG environment variable
//  2. ~/.kube/config (if it exists)
//  3. In-cluster service account (when running as a Kubernetes Pod)
//
// The context override only applies to file-based configuration; in-cluster
// configuration has no contexts to select from.
func Build(kubeconfig, kubeContext string) (Interface, error) {
	config, err := buildRestConfig(kubeconfig, kubeContext)
	if err != nil {
		return nil, err
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, nil
}

func buildRestConfig(kubeconfig, kubeContext string) (*rest.Config, error) {
	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")

		if kubeconfig == "" {
			kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
			if _, err := os.Stat(kubeconfig); os.IsNotExist(err) {
				kubeconfig = ""
			}
		}
	}

	// Use InClusterConfig directly when no kubeconfig is available.
	// This avoids the warning: "Neither --kubeconfig nor --master was specified"
	if kubeconfig == "" {
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
		return config, nil
	}

	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
	}

	return config, nil
}
