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

// Package certs keeps a self-signed TLS pair on disk and mirrors it into the
// cluster as a kubernetes.io/tls secret.
//
// The pair is regenerated with openssl whenever it is missing, unreadable, or
// within the renewal threshold of expiry. The secret is re-applied from the
// files on every reconciliation, so an interrupted earlier run cannot leave
// the cluster serving an older certificate than the one on disk.
package certs
