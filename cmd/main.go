// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package main provides the CLI entry point for arch-manager.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mttk2004/arch-manager/internal/cli"
)

// Exit codes following Unix conventions. Failures reported inside a JSON
// envelope still exit zero; these cover process-level problems only.
const (
	ExitSuccess       = 0 // Command completed (envelope carries the outcome)
	ExitGeneralError  = 1 // Unexpected process failure
	ExitUsageError    = 2 // Invalid arguments/usage
	ExitConfigError   = 3 // Configuration file is malformed
	ExitLockError     = 4 // Another instance holds the process lock
	ExitSystemError   = 12 // Filesystem or lock acquisition failure
	ExitInterruptErr  = 14 // User Ctrl+C interrupt
)

func main() {
	os.Exit(run())
}

func run() int {
	// One instance at a time; concurrent pacman invocations corrupt its
	// database lock handling.
	lockPath := filepath.Join(os.TempDir(), "arch-manager.lock")
	lock := flock.New(lockPath)

	locked, err := lock.TryLock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to acquire process lock: %v\n", err)

		return ExitSystemError
	}

	if !locked {
		fmt.Fprintln(os.Stderr, "another arch-manager instance is already running")

		return ExitLockError
	}

	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to release process lock: %v\n", unlockErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New()
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		if ctx.Err() != nil {
			return ExitInterruptErr
		}

		return ExitGeneralError
	}

	return ExitSuccess
}
