/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package hosts maps the TLS hostname to loopback in the system resolution
// file, so the name the ingress serves is the name the browser resolves.
package hosts
