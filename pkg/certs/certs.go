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

package certs

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/oikos/pkg/config"
	"github.com/NVIDIA/oikos/pkg/defaults"
	serrors "github.com/NVIDIA/oikos/pkg/errors"
	"github.com/NVIDIA/oikos/pkg/k8s/client"
	"github.com/NVIDIA/oikos/pkg/runner"
)

// Manager owns the on-disk TLS pair and its cluster-held copy. The pair is
// renewed proactively when its remaining validity falls to the threshold, and
// the cluster secret is re-applied from the files after every Ensure so the
// two can never silently diverge.
type Manager struct {
	cfg    config.Config
	runner runner.Runner
	client client.Provider

	// now is replaceable so renewal boundaries are testable.
	now func() time.Time
}

// NewManager creates a certificate Manager.
func NewManager(cfg config.Config, r runner.Runner, p client.Provider) *Manager {
	return &Manager{
		cfg:    cfg,
		runner: r,
		client: p,
		now:    time.Now,
	}
}

// Ensure reconciles the certificate pair and materializes it as the cluster
// TLS secret. A pair with more than the threshold days remaining is kept;
// anything else, including a missing or unreadable pair, is regenerated. The
// secret application is unconditional: a previous run interrupted between
// file regeneration and secret application converges here.
func (m *Manager) Ensure(ctx context.Context) error {
	if !m.pairUsable() {
		if err := m.regenerate(ctx); err != nil {
			return err
		}
	}
	return m.applySecret(ctx)
}

// pairUsable reports whether the on-disk pair exists and clears the renewal
// threshold. Half a pair is no pair.
func (m *Manager) pairUsable() bool {
	if !fileExists(m.cfg.KeyPath()) || !fileExists(m.cfg.CertPath()) {
		return false
	}

	daysLeft, err := m.remainingDays()
	if err != nil {
		slog.Warn("could not read certificate, renewing",
			slog.String("path", m.cfg.CertPath()),
			slog.String("error", err.Error()))
		return false
	}

	if daysLeft > defaults.CertRenewalThresholdDays {
		slog.Info("certificate still valid",
			slog.String("host", m.cfg.Host),
			slog.Int("days_left", daysLeft))
		return true
	}

	slog.Info("certificate near expiry, renewing",
		slog.String("host", m.cfg.Host),
		slog.Int("days_left", daysLeft),
		slog.Int("threshold_days", defaults.CertRenewalThresholdDays))
	return false
}

// remainingDays returns the whole days until the on-disk certificate
// expires, truncated.
func (m *Manager) remainingDays() (int, error) {
	raw, err := os.ReadFile(m.cfg.CertPath())
	if err != nil {
		return 0, err
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return 0, fmt.Errorf("no PEM block in %s", m.cfg.CertPath())
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return 0, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return int(cert.NotAfter.Sub(m.now()) / (24 * time.Hour)), nil
}

// regenerate removes whatever is left of the pair and generates a fresh
// self-signed one. Modern clients ignore the CN, so the host goes into the
// SAN as well.
func (m *Manager) regenerate(ctx context.Context) error {
	for _, path := range []string{m.cfg.KeyPath(), m.cfg.CertPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return serrors.Wrap(serrors.ErrCodeInternal,
				fmt.Sprintf("failed to remove stale %s", path), err)
		}
	}
	if err := os.MkdirAll(m.cfg.CertDir, 0o755); err != nil {
		return serrors.Wrap(serrors.ErrCodeInternal,
			fmt.Sprintf("failed to create certificate directory %s", m.cfg.CertDir), err)
	}

	slog.Info("generating self-signed certificate",
		slog.String("host", m.cfg.Host),
		slog.Int("validity_days", defaults.CertValidityDays))

	ctx, cancel := context.WithTimeout(ctx, defaults.HostCommandTimeout)
	defer cancel()

	if _, err := m.runner.Run(ctx, runner.Command{
		Name: "openssl",
		Args: []string{
			"req", "-x509",
			"-newkey", fmt.Sprintf("rsa:%d", defaults.CertKeyBits),
			"-sha256",
			"-days", strconv.Itoa(defaults.CertValidityDays),
			"-nodes",
			"-keyout", m.cfg.KeyPath(),
			"-out", m.cfg.CertPath(),
			"-subj", "/CN=" + m.cfg.Host,
			"-addext", "subjectAltName=DNS:" + m.cfg.Host,
		},
	}); err != nil {
		return serrors.Wrap(serrors.ErrCodeCommandFailed, "failed to generate certificate pair", err)
	}
	return nil
}

// applySecret ensures the namespace exists and fully overwrites the TLS
// secret with the current file bytes.
func (m *Manager) applySecret(ctx context.Context) error {
	certBytes, err := os.ReadFile(m.cfg.CertPath())
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInternal, "failed to read certificate for secret", err)
	}
	keyBytes, err := os.ReadFile(m.cfg.KeyPath())
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInternal, "failed to read private key for secret", err)
	}

	clientset, err := m.client()
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeKubernetes, "failed to get kubernetes client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.K8sApplyTimeout)
	defer cancel()

	if err := m.ensureNamespace(ctx, clientset); err != nil {
		return err
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      m.cfg.TLSSecretName,
			Namespace: m.cfg.Namespace,
		},
		Type: corev1.SecretTypeTLS,
		Data: map[string][]byte{
			corev1.TLSCertKey:       certBytes,
			corev1.TLSPrivateKeyKey: keyBytes,
		},
	}

	secrets := clientset.CoreV1().Secrets(m.cfg.Namespace)
	if _, err := secrets.Create(ctx, secret, metav1.CreateOptions{}); err != nil {
		if !apierrors.IsAlreadyExists(err) {
			return serrors.Wrap(serrors.ErrCodeKubernetes,
				fmt.Sprintf("failed to create secret %s", m.cfg.TLSSecretName), err)
		}

		existing, getErr := secrets.Get(ctx, secret.Name, metav1.GetOptions{})
		if getErr != nil {
			return serrors.Wrap(serrors.ErrCodeKubernetes,
				fmt.Sprintf("failed to get secret %s", m.cfg.TLSSecretName), getErr)
		}
		existing.Type = secret.Type
		existing.Data = secret.Data
		if _, updErr := secrets.Update(ctx, existing, metav1.UpdateOptions{}); updErr != nil {
			return serrors.Wrap(serrors.ErrCodeKubernetes,
				fmt.Sprintf("failed to update secret %s", m.cfg.TLSSecretName), updErr)
		}
	}

	slog.Info("tls secret applied",
		slog.String("secret", m.cfg.TLSSecretName),
		slog.String("namespace", m.cfg.Namespace))
	return nil
}

// ensureNamespace creates the target namespace if it does not exist yet.
func (m *Manager) ensureNamespace(ctx context.Context, clientset client.Interface) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: m.cfg.Namespace},
	}

	_, err := clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return serrors.Wrap(serrors.ErrCodeKubernetes,
			fmt.Sprintf("failed to create namespace %s", m.cfg.Namespace), err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
