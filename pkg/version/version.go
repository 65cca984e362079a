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

// Package version parses and compares tool version numbers for preflight
// gating. It understands the loose formats that CLI version banners use
// ("v1.30.2", "28.1.1-rc1", "0.23") rather than strict semver.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
	ErrNoVersionInOutput = errors.New("no version found in output")
)

// Version represents a version number with Major, Minor, and Patch components.
// It supports flexible precision (1, 2, or 3 components) so a configured
// minimum like "20.10" compares against any 20.10.x installation, and it
// preserves trailing metadata such as "-rc1" in Extras without interpreting it.
type Version struct {
	Major int
	Minor int
	Patch int

	// Precision indicates how many components are significant (1, 2, or 3)
	Precision int

	// Extras stores trailing metadata like "-rc1" or "+incompatible"
	Extras string
}

// NewVersion creates a Version with all three components significant.
// Use ParseVersion for version strings with fewer components.
func NewVersion(major, minor, patch int) Version {
	return Version{
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Precision: 3,
	}
}

// String returns the string representation of the Version respecting its
// precision. Extras are not included.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return fmt.Sprintf("%d", v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// ParseVersion parses a version string into a Version struct.
// Supported formats: "1", "1.2", "1.2.3", "v1.2.3", "1.2.3-suffix", "1.2.3+metadata".
// The "v" prefix is optional and stripped if present.
// Additional metadata after '-' or '+' is preserved in the Extras field.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	s = strings.TrimPrefix(s, "v")
	var v Version

	// Extract extras if they exist: anything after a dash or plus that
	// directly follows a digit. This handles "1.28.0-gke.1337000" where the
	// extras contain dots, without treating "-1" as having extras.
	mainPart := s
	for i, ch := range s {
		if (ch == '-' || ch == '+') && i > 0 {
			prevCh := s[i-1]
			if prevCh >= '0' && prevCh <= '9' {
				mainPart = s[:i]
				v.Extras = s[i:]
				break
			}
		}
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}

		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}

	v.Precision = len(parts)
	return v, nil
}

// MustParseVersion parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests; for runtime data use
// ParseVersion and handle the error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Extract scans command output for the first token that parses as a version
// with at least major.minor precision. Version banners differ per tool
// ("Docker version 28.1.1, build 4eba377", "kind version 0.23.0",
// "Client Version: v1.30.2"); requiring two components skips bare integers
// such as dates and build numbers.
func Extract(output string) (Version, error) {
	for _, field := range strings.Fields(output) {
		token := strings.Trim(field, ",;:()[]")
		v, err := ParseVersion(token)
		if err != nil || v.Precision < 2 {
			continue
		}
		return v, nil
	}

	line := output
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return Version{}, fmt.Errorf("%w: %q", ErrNoVersionInOutput, strings.TrimSpace(line))
}

// EqualsOrNewer returns true if v is equal to or newer than other.
// Comparison is performed up to the precision of v.
// For example, Version{Major:1, Minor:2, Precision:2} matches any 1.2.x version.
func (v Version) EqualsOrNewer(other Version) bool {
	if v.Major > other.Major {
		return true
	}
	if v.Major < other.Major {
		return false
	}

	if v.Precision == 1 {
		return true
	}

	if v.Minor > other.Minor {
		return true
	}
	if v.Minor < other.Minor {
		return false
	}

	if v.Precision == 2 {
		return true
	}

	return v.Patch >= other.Patch
}

// IsValid returns true if the version has valid values.
// All components must be non-negative and precision must be 1, 2, or 3.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	if v.Precision < 1 || v.Precision > 3 {
		return false
	}
	return true
}
