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

// Certificate policy for the self-signed TLS material.
const (
	// CertValidityDays is the lifetime of a freshly generated certificate.
	CertValidityDays = 365

	// CertRenewalThresholdDays is the remaining-validity floor below which
	// the certificate pair is regenerated. A pair with strictly more days
	// left is kept.
	CertRenewalThresholdDays = 30

	// CertKeyBits is the RSA key size for generated certificates.
	CertKeyBits = 4096
)

// Registry and image naming policy.
const (
	// RegistryInternalPort is the port the registry image serves on inside
	// its container. The host port maps onto it.
	RegistryInternalPort = 5000

	// ImageTag is the tag applied to every successful build. It always
	// refers to the most recent build-and-push.
	ImageTag = "latest"
)
