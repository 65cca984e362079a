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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	// Name is the executable, resolved on PATH.
	Name string

	// Args are the process arguments, excluding the executable itself.
	Args []string

	// Dir is the working directory. Empty means the caller's.
	Dir string

	// Stdin is fed to the process when non-empty.
	Stdin []byte

	// Stream mirrors process output to stderr while capturing it, for
	// long-running invocations like image builds where silence reads as a
	// hang.
	Stream bool
}

// String renders the invocation the way an operator would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result carries the captured output and exit status of a completed process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts process execution so component logic can be exercised
// against a scripted fake instead of real tools.
type Runner interface {
	// Run executes the command and captures its output. A non-zero exit is
	// returned as an error with the Result still populated, so callers that
	// branch on exit status can inspect it.
	Run(ctx context.Context, cmd Command) (Result, error)

	// LookPath resolves an executable name on the command path.
	LookPath(name string) (string, error)
}

// Local runs commands as real host processes.
type Local struct{}

// NewLocal returns a Runner backed by os/exec.
func NewLocal() Local {
	return Local{}
}

// Run implements Runner.
func (Local) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Stdin) > 0 {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	if cmd.Stream {
		c.Stdout = io.MultiWriter(&stdout, os.Stderr)
		c.Stderr = io.MultiWriter(&stderr, os.Stderr)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			if msg := strings.TrimSpace(res.Stderr); msg != "" {
				return res, fmt.Errorf("%s exited with code %d: %s", cmd.Name, res.ExitCode, msg)
			}
			return res, fmt.Errorf("%s exited with code %d", cmd.Name, res.ExitCode)
		}
		res.ExitCode = -1
		return res, fmt.Errorf("failed to start %s: %w", cmd.Name, err)
	}

	return res, nil
}

// LookPath implements Runner.
func (Local) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
