/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package registry manages the local image registry container that backs the
// disposable cluster environment.
//
// Ensure is a reconciliation: it queries the container's current state and
// performs only the action needed to reach "running and serving", so repeated
// calls are safe. Reachability is confirmed against the Distribution API
// itself rather than the container state, because a container can be running
// while a foreign process owns the published port. VerifyTag lets callers
// confirm a pushed tag is actually resolvable, closing the build-push loop.
package registry
