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

// Package defaults provides centralized configuration constants for oikos.
//
// This package defines timeout values, poll intervals, and certificate policy
// defaults used across the codebase. Centralizing these values ensures
// consistency and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Registry timeouts: For local registry container lifecycle and probing
//   - Cluster timeouts: For cluster creation and deletion
//   - Build timeouts: For application image builds and pushes
//   - Ingress timeouts: For ingress controller readiness
//   - Kubernetes timeouts: For direct API operations
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/oikos/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ClusterCreateTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
// When choosing timeout values:
//
//   - Container operations: 30s, docker answers fast or not at all
//   - Cluster creation: 5m, node image pulls dominate on first run
//   - Image builds: 15m, cold dependency caches dominate on first run
//   - Ingress readiness: 180s hard ceiling, failure is fatal
package defaults
