/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package preflight verifies required external tools before any stateful
// action runs. Lookups and version probes run concurrently, but failures are
// reported in the order the tools are declared in the configuration so the
// first reported gap is deterministic. A missing tool and a too-old tool are
// both fatal; a tool whose version banner cannot be parsed passes with a
// warning.
package preflight
