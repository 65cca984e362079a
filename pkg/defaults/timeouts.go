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

package defaults

import "time"

// Registry timeouts for local registry container operations.
const (
	// RegistryStartTimeout is the timeout for starting or creating the
	// registry container.
	RegistryStartTimeout = 30 * time.Second

	// RegistryReadyTimeout is the maximum duration to wait for the registry
	// to answer Distribution API pings after the container reports running.
	RegistryReadyTimeout = 30 * time.Second

	// RegistryPollInterval is the interval between registry readiness probes.
	RegistryPollInterval = 500 * time.Millisecond
)

// Cluster timeouts for cluster lifecycle operations.
const (
	// ClusterCreateTimeout is the timeout for cluster creation.
	// First runs pull the node image, which dominates the duration.
	ClusterCreateTimeout = 5 * time.Minute

	// ClusterDeleteTimeout is the timeout for cluster deletion.
	ClusterDeleteTimeout = 2 * time.Minute

	// ClusterQueryTimeout is the timeout for read-only cluster queries
	// such as listing existing clusters or inspecting container state.
	ClusterQueryTimeout = 30 * time.Second
)

// Build timeouts for application image operations.
const (
	// ImageBuildTimeout is the timeout for a single image build attempt.
	// Cold dependency caches dominate the first build.
	ImageBuildTimeout = 15 * time.Minute

	// ImagePushTimeout is the timeout for tagging and pushing the built
	// image to the local registry.
	ImagePushTimeout = 5 * time.Minute
)

// Ingress timeouts for ingress controller readiness.
const (
	// IngressReadyTimeout is the hard ceiling for the ingress controller
	// Deployment to report Available. Exceeding it is fatal.
	IngressReadyTimeout = 180 * time.Second

	// IngressPollInterval is the interval between readiness checks.
	IngressPollInterval = 2 * time.Second
)

// Kubernetes timeouts for direct API operations.
const (
	// K8sApplyTimeout is the timeout for creating or updating a single
	// Kubernetes object.
	K8sApplyTimeout = 30 * time.Second

	// K8sQueryTimeout is the timeout for read-only Kubernetes queries.
	K8sQueryTimeout = 15 * time.Second
)

// Host command timeouts for short local operations.
const (
	// HostCommandTimeout is the timeout for quick host-side commands such
	// as hosts-file edits and certificate generation.
	HostCommandTimeout = 30 * time.Second

	// PreflightTimeout is the timeout for the whole preflight tool scan.
	PreflightTimeout = 15 * time.Second
)
