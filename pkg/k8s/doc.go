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

// Package k8s groups the Kubernetes integration for oikos.
//
// # Sub-packages
//
// client: lazy, memoized Kubernetes client construction
//
//	provider := client.NewProvider(kubeconfig, "kind-oikos")
//	clientset, err := provider()
//	if err != nil {
//	    return err
//	}
//	// Use clientset for API operations
//
// # Architecture
//
// Components are wired with a client.Provider rather than a built clientset.
// The kubeconfig context for a kind cluster only exists after the cluster has
// been created, so the client must not be constructed at wiring time. The
// Provider defers construction to the first API call and memoizes the result
// with sync.Once, making it safe for concurrent use.
//
// Configuration discovery follows the usual order: an explicit kubeconfig
// path, the KUBECONFIG environment variable, ~/.kube/config, and finally the
// in-cluster service account.
package k8s
