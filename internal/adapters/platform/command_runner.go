// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package platform provides the real command executor behind the
// CommandRunner port.
package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/privilege"
)

// DefaultTimeout bounds a single external invocation.
const DefaultTimeout = 300 * time.Second

// Runner implements the CommandRunner port for real system commands.
type Runner struct {
	session *privilege.Session
	timeout time.Duration
	verbose bool
	dryRun  bool
}

// NewRunner creates a runner. Privileged calls are routed through session;
// a nil session means every privileged call fails fast.
func NewRunner(session *privilege.Session, timeout time.Duration, verbose, dryRun bool) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Runner{
		session: session,
		timeout: timeout,
		verbose: verbose,
		dryRun:  dryRun,
	}
}

// Execute runs a command, blocking until it exits or the deadline elapses.
// On deadline the process is killed and a TIMEOUT failure is returned.
func (r *Runner) Execute(ctx context.Context, name string, args ...string) (*domain.Outcome, error) {
	if r.verbose {
		fmt.Fprintf(os.Stderr, "Executing: %s %s\n", name, strings.Join(args, " "))
	}

	if !r.CommandExists(name) {
		return nil, domain.NewFailure(domain.CodeCommandNotFound,
			fmt.Sprintf("required tool %q not found on PATH", name),
			map[string]any{"command": name})
	}

	if r.dryRun {
		fmt.Fprintf(os.Stderr, "DRY RUN: %s %s\n", name, strings.Join(args, " "))

		return &domain.Outcome{}, nil
	}

	return r.run(ctx, name, args...)
}

// ExecuteRoot runs a command through the privilege session, prepending the
// elevation binary. It never prompts: an unauthenticated session fails fast
// with PERMISSION_DENIED.
func (r *Runner) ExecuteRoot(ctx context.Context, name string, args ...string) (*domain.Outcome, error) {
	if r.session == nil {
		return nil, domain.NewFailure(domain.CodePermissionDenied,
			"no privilege session: authentication missing or previously failed", nil)
	}

	if err := r.session.Require(); err != nil {
		return nil, err
	}

	if r.verbose {
		fmt.Fprintf(os.Stderr, "Executing (root): %s %s\n", name, strings.Join(args, " "))
	}

	if !r.CommandExists(name) {
		return nil, domain.NewFailure(domain.CodeCommandNotFound,
			fmt.Sprintf("required tool %q not found on PATH", name),
			map[string]any{"command": name})
	}

	if r.dryRun {
		fmt.Fprintf(os.Stderr, "DRY RUN (root): %s %s\n", name, strings.Join(args, " "))

		return &domain.Outcome{}, nil
	}

	if os.Geteuid() == 0 {
		return r.run(ctx, name, args...)
	}

	// -n: the session timestamp is alive, so sudo must never prompt here.
	sudoArgs := append([]string{"-n", name}, args...)

	return r.run(ctx, "sudo", sudoArgs...)
}

// CommandExists checks if a command is available on the system.
func (r *Runner) CommandExists(name string) bool {
	_, err := exec.LookPath(name)

	return err == nil
}

// run spawns exactly one external process and captures its outcome.
func (r *Runner) run(ctx context.Context, name string, args ...string) (*domain.Outcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// #nosec G204 - intentional command execution, arguments come from the
	// action protocol and are passed as a vector, never through a shell.
	cmd := exec.CommandContext(runCtx, name, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	outcome := &domain.Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return outcome, nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, domain.NewFailure(domain.CodeTimeout,
			fmt.Sprintf("%s timed out after %s", name, r.timeout),
			map[string]any{"command": commandLine(name, args), "timeout": r.timeout.String()})
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()

		return outcome, nil
	}

	return nil, domain.NewFailure(domain.CodeSystemError,
		fmt.Sprintf("failed to start %s: %v", name, err),
		map[string]any{"command": commandLine(name, args)})
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}

	return name + " " + strings.Join(args, " ")
}
