/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package hosts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/oikos/pkg/config"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/runner"
)

const baseHosts = "127.0.0.1 localhost\n::1 localhost\n"

func newPatcher(t *testing.T, contents string) (*Patcher, *runner.Fake) {
	t.Helper()

	cfg := config.Default()
	cfg.HostsFile = filepath.Join(t.TempDir(), "hosts")
	if contents != "" {
		require.NoError(t, os.WriteFile(cfg.HostsFile, []byte(contents), 0o644))
	}

	fr := runner.NewFake()
	return NewPatcher(cfg, fr), fr
}

// sudoWrites makes the fake runner carry out the two privileged writes the
// patcher issues: tee -a appends stdin, sed -i.bak strips matching lines.
func sudoWrites(t *testing.T, p *Patcher, fr *runner.Fake) {
	t.Helper()
	fr.Handler = func(cmd runner.Command) (runner.Result, error) {
		switch {
		case strings.HasPrefix(cmd.String(), "sudo tee -a"):
			entry, err := io.ReadAll(cmd.Stdin)
			require.NoError(t, err)
			f, err := os.OpenFile(p.cfg.HostsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			require.NoError(t, err)
			_, err = f.Write(entry)
			require.NoError(t, err)
			require.NoError(t, f.Close())
		case strings.HasPrefix(cmd.String(), "sudo sed -i.bak"):
			raw, err := os.ReadFile(p.cfg.HostsFile)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(p.cfg.HostsFile+".bak", raw, 0o644))
			var kept []string
			for _, line := range strings.Split(string(raw), "\n") {
				if !strings.Contains(line, p.cfg.Host) {
					kept = append(kept, line)
				}
			}
			require.NoError(t, os.WriteFile(p.cfg.HostsFile, []byte(strings.Join(kept, "\n")), 0o644))
		}
		return runner.Result{}, nil
	}
}

func TestEnsureAppendsWhenAbsent(t *testing.T) {
	p, fr := newPatcher(t, baseHosts)
	sudoWrites(t, p, fr)

	require.NoError(t, p.Ensure(context.Background()))

	lines := fr.CommandLines()
	require.Len(t, lines, 1)
	require.Equal(t, "sudo tee -a "+p.cfg.HostsFile, lines[0])

	raw, err := os.ReadFile(p.cfg.HostsFile)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(raw), fmt.Sprintf("127.0.0.1 %s\n", p.cfg.Host)))
}

func TestEnsureTwiceAppendsOnce(t *testing.T) {
	p, fr := newPatcher(t, baseHosts)
	sudoWrites(t, p, fr)

	require.NoError(t, p.Ensure(context.Background()))
	require.NoError(t, p.Ensure(context.Background()))

	require.Len(t, fr.Calls(), 1, "the second run must see the entry and skip the write")

	raw, err := os.ReadFile(p.cfg.HostsFile)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(raw), p.cfg.Host))
}

func TestEnsureSkipsExistingEntry(t *testing.T) {
	p, fr := newPatcher(t, baseHosts+"127.0.0.1 oikos.local\n")

	require.NoError(t, p.Ensure(context.Background()))
	require.Empty(t, fr.Calls())
}

func TestEnsureIgnoresCommentedEntry(t *testing.T) {
	p, fr := newPatcher(t, baseHosts+"# 127.0.0.1 oikos.local\n")
	sudoWrites(t, p, fr)

	require.NoError(t, p.Ensure(context.Background()))
	require.True(t, fr.CalledWithPrefix("sudo tee"), "a commented entry does not resolve")
}

func TestEnsureCreatesMissingFile(t *testing.T) {
	p, fr := newPatcher(t, "")
	sudoWrites(t, p, fr)

	require.NoError(t, p.Ensure(context.Background()))
	require.True(t, fr.CalledWithPrefix("sudo tee"))
}

func TestEnsureFailsWhenAppendDenied(t *testing.T) {
	p, fr := newPatcher(t, baseHosts)
	fr.StubError("sudo tee", 1, "sudo: a password is required")

	err := p.Ensure(context.Background())
	require.Error(t, err)
	require.Equal(t, serrors.ErrCodeCommandFailed, serrors.CodeOf(err))
}

func TestRemoveStripsEntryAndKeepsBackup(t *testing.T) {
	p, fr := newPatcher(t, baseHosts+"127.0.0.1 oikos.local\n")
	sudoWrites(t, p, fr)

	require.NoError(t, p.Remove(context.Background()))

	lines := fr.CommandLines()
	require.Len(t, lines, 1)
	require.Equal(t, fmt.Sprintf(`sudo sed -i.bak /oikos\.local/d %s`, p.cfg.HostsFile), lines[0])

	raw, err := os.ReadFile(p.cfg.HostsFile)
	require.NoError(t, err)
	require.NotContains(t, string(raw), p.cfg.Host)

	backup, err := os.ReadFile(p.cfg.HostsFile + ".bak")
	require.NoError(t, err)
	require.Contains(t, string(backup), p.cfg.Host)
}

func TestRemoveTwiceStripsOnce(t *testing.T) {
	p, fr := newPatcher(t, baseHosts+"127.0.0.1 oikos.local\n")
	sudoWrites(t, p, fr)

	require.NoError(t, p.Remove(context.Background()))
	require.NoError(t, p.Remove(context.Background()))

	require.Len(t, fr.Calls(), 1, "the second run must see the entry gone and skip the write")
}

func TestRemoveAbsentEntryIsNoOp(t *testing.T) {
	p, fr := newPatcher(t, baseHosts)

	require.NoError(t, p.Remove(context.Background()))
	require.Empty(t, fr.Calls())
}
