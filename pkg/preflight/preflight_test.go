/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package preflight

import (
	"context"
	"strings"
	"testing"

	"github.com/NVIDIA/oikos/pkg/config"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/runner"
)

func testConfig(tools ...config.Tool) config.Config {
	cfg := config.Default()
	cfg.RequiredTools = tools
	return cfg
}

func TestCheckAllPresent(t *testing.T) {
	fake := runner.NewFake()
	fake.Stub("docker --version", runner.Result{Stdout: "Docker version 28.1.1, build 4eba377"}, nil)
	fake.Stub("kind --version", runner.Result{Stdout: "kind version 0.23.0"}, nil)
	fake.Stub("kubectl version --client", runner.Result{Stdout: "Client Version: v1.30.2"}, nil)

	checker := New(testConfig(
		config.Tool{Name: "docker", MinVersion: "20.10"},
		config.Tool{Name: "kind", MinVersion: "0.20"},
		config.Tool{Name: "kubectl", MinVersion: "1.27"},
		config.Tool{Name: "openssl"},
		config.Tool{Name: "sudo"},
	), fake)

	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestCheckReportsFirstMissingByDeclaredOrder(t *testing.T) {
	fake := runner.NewFake()
	// Both kind and openssl are missing; declared order puts kind first.
	fake.MissingTools = []string{"kind", "openssl"}

	checker := New(testConfig(
		config.Tool{Name: "docker"},
		config.Tool{Name: "kind"},
		config.Tool{Name: "openssl"},
	), fake)

	err := checker.Check(context.Background())
	if err == nil {
		t.Fatal("Check() should fail when tools are missing")
	}
	if serrors.CodeOf(err) != serrors.ErrCodeToolMissing {
		t.Errorf("CodeOf(err) = %s, want %s", serrors.CodeOf(err), serrors.ErrCodeToolMissing)
	}
	if !strings.Contains(err.Error(), "kind") {
		t.Errorf("error %q should name the first missing tool in declared order", err.Error())
	}
	if strings.Contains(err.Error(), "openssl") {
		t.Errorf("error %q should only name the first missing tool", err.Error())
	}
}

func TestCheckNoSideEffectsWithoutGates(t *testing.T) {
	fake := runner.NewFake()

	checker := New(testConfig(
		config.Tool{Name: "docker"},
		config.Tool{Name: "sudo"},
	), fake)

	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if calls := fake.CommandLines(); len(calls) != 0 {
		t.Errorf("Check() without version gates should run no commands, ran %v", calls)
	}
}

func TestCheckVersionGateRejectsOld(t *testing.T) {
	fake := runner.NewFake()
	fake.Stub("docker --version", runner.Result{Stdout: "Docker version 19.3.8, build afacb8b"}, nil)

	checker := New(testConfig(config.Tool{Name: "docker", MinVersion: "20.10"}), fake)

	err := checker.Check(context.Background())
	if err == nil {
		t.Fatal("Check() should fail for a too-old tool")
	}
	if serrors.CodeOf(err) != serrors.ErrCodeToolMissing {
		t.Errorf("CodeOf(err) = %s, want %s", serrors.CodeOf(err), serrors.ErrCodeToolMissing)
	}
	// The failure must name both versions so the operator knows the gap.
	if !strings.Contains(err.Error(), "19.3.8") || !strings.Contains(err.Error(), "20.10") {
		t.Errorf("error %q should name installed and required versions", err.Error())
	}
}

func TestCheckVersionGateAcceptsNewer(t *testing.T) {
	fake := runner.NewFake()
	fake.Stub("kind --version", runner.Result{Stdout: "kind version 0.23.0"}, nil)

	checker := New(testConfig(config.Tool{Name: "kind", MinVersion: "0.20"}), fake)

	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestCheckUnreadableBannerSkipsGate(t *testing.T) {
	fake := runner.NewFake()
	fake.Stub("docker --version", runner.Result{Stdout: "something unexpected"}, nil)

	checker := New(testConfig(config.Tool{Name: "docker", MinVersion: "20.10"}), fake)

	// Present tool with an unparseable banner passes; the gate is advisory.
	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestCheckVersionProbeFailure(t *testing.T) {
	fake := runner.NewFake()
	fake.StubError("docker --version", 1, "cannot connect")

	checker := New(testConfig(config.Tool{Name: "docker", MinVersion: "20.10"}), fake)

	err := checker.Check(context.Background())
	if err == nil {
		t.Fatal("Check() should fail when the version probe fails")
	}
	if serrors.CodeOf(err) != serrors.ErrCodeCommandFailed {
		t.Errorf("CodeOf(err) = %s, want %s", serrors.CodeOf(err), serrors.ErrCodeCommandFailed)
	}
}

func TestCheckMissingBeatsVersionGate(t *testing.T) {
	fake := runner.NewFake()
	fake.MissingTools = []string{"kubectl"}
	fake.Stub("docker --version", runner.Result{Stdout: "Docker version 19.3.8"}, nil)

	checker := New(testConfig(
		config.Tool{Name: "docker", MinVersion: "20.10"},
		config.Tool{Name: "kubectl"},
	), fake)

	err := checker.Check(context.Background())
	if err == nil {
		t.Fatal("Check() should fail")
	}
	// docker is declared first, so its gate failure wins over the missing kubectl.
	if !strings.Contains(err.Error(), "docker") {
		t.Errorf("error %q should report the first declared failure", err.Error())
	}
}
