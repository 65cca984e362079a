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

// Package client provides lazy Kubernetes client construction for cluster interactions.
//
// The central type is Provider, a memoized constructor bound to a kubeconfig
// path and context name. Components that talk to the cluster hold a Provider
// rather than a clientset because the cluster they target does not exist at
// wiring time: the kind context is only written to the kubeconfig once the
// cluster has been created. The first component that actually issues an API
// call triggers construction; every later call reuses the same client, which
// keeps connection counts down and spares the API server repeated discovery.
//
// # Usage
//
//	provider := client.NewProvider(cfg.Kubeconfig, cfg.KubeContext())
//
//	// later, inside a component, once the cluster is up
//	clientset, err := provider()
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//	pods, err := clientset.CoreV1().Pods("default").List(ctx, metav1.ListOptions{})
//
// # Configuration Discovery
//
// When the kubeconfig path is empty, Build falls back to the standard chain:
// the KUBECONFIG environment variable, then ~/.kube/config, then in-cluster
// service account credentials. A non-empty context name selects that context
// from the loaded file instead of its current-context; in-cluster
// configuration has no contexts, so the override is ignored there.
//
// # Testing
//
// StaticProvider wraps any existing client, which lets tests hand a
// fake clientset to components expecting lazy construction:
//
//	fakeClient := fake.NewClientset()
//	mgr := cluster.NewManager(cfg, runner, client.StaticProvider(fakeClient))
package client
