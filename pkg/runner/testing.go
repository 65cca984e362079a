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

package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a scripted Runner for component tests. It records every invocation
// and answers from stubs registered by command-line prefix, longest match
// first. Unstubbed commands succeed with empty output, so tests only script
// the calls they care about.
type Fake struct {
	mu    sync.Mutex
	calls []Command
	stubs []fakeStub

	// Handler, when set, intercepts every call before stub matching. Tests
	// use it to simulate side effects such as a generator writing files.
	Handler func(cmd Command) (Result, error)

	// MissingTools lists executable names LookPath reports as absent.
	MissingTools []string
}

type fakeStub struct {
	prefix string
	res    Result
	err    error
}

// NewFake returns an empty scripted runner.
func NewFake() *Fake {
	return &Fake{}
}

// Stub registers a response for every command whose rendered command line
// starts with prefix. Later stubs win over earlier ones at equal length.
func (f *Fake) Stub(prefix string, res Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubs = append(f.stubs, fakeStub{prefix: prefix, res: res, err: err})
}

// StubError registers a failing response with the given exit code.
func (f *Fake) StubError(prefix string, exitCode int, stderr string) {
	f.Stub(prefix,
		Result{Stderr: stderr, ExitCode: exitCode},
		fmt.Errorf("%s exited with code %d: %s", strings.Fields(prefix)[0], exitCode, stderr),
	)
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	handler := f.Handler
	f.mu.Unlock()

	if handler != nil {
		return handler(cmd)
	}

	line := cmd.String()
	var best *fakeStub
	f.mu.Lock()
	for i := range f.stubs {
		s := &f.stubs[i]
		if strings.HasPrefix(line, s.prefix) {
			if best == nil || len(s.prefix) >= len(best.prefix) {
				best = s
			}
		}
	}
	f.mu.Unlock()

	if best != nil {
		return best.res, best.err
	}
	return Result{}, nil
}

// LookPath implements Runner. Every tool resolves to itself unless listed in
// MissingTools.
func (f *Fake) LookPath(name string) (string, error) {
	for _, missing := range f.MissingTools {
		if missing == name {
			return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
		}
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of all recorded invocations in order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CommandLines returns the rendered command line of every recorded
// invocation, in order. Convenient for sequence assertions.
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// CalledWithPrefix reports whether any recorded invocation starts with
// prefix.
func (f *Fake) CalledWithPrefix(prefix string) bool {
	for _, line := range f.CommandLines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
