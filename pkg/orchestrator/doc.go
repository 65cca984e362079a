// Package orchestrator sequences the reconciliation components into the
// operator workflows: up, down, reset, and renew-tls.
//
// A workflow runs its steps strictly in declared order and aborts on the
// first failure, leaving already-created resources in place. Every step is
// idempotent, so re-running the same workflow is the recovery path. Each run
// carries a correlation id on its log lines.
package orchestrator
