/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package image builds the application container image and publishes it to
// the local registry. Strategy selection probes the application directory:
// a gradle wrapper means the buildpack path (fast, dependency-cache aware),
// a Dockerfile means the generic container build. When the gradle build
// fails and a Dockerfile exists, the fallback runs exactly once and the
// primary is never retried. After either build path, the image is re-tagged
// with the registry-qualified reference, pushed, and the tag is resolved back
// from the registry so the run fails loudly if the push did not land.
package image
