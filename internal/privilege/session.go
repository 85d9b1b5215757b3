// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package privilege manages the long-lived sudo session: authenticate once
// at startup, keep the timestamp alive from a background goroutine, and
// tear the loop down deterministically on exit.
package privilege

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mttk2004/arch-manager/internal/domain"
)

const (
	// DefaultKeepaliveInterval is how often the background task re-touches
	// the sudo timestamp.
	DefaultKeepaliveInterval = 60 * time.Second

	// timestampWindow is how long an un-refreshed authorization is trusted.
	// Conservative against sudo's default timestamp_timeout of 15 minutes.
	timestampWindow = 5 * time.Minute
)

// Elevator abstracts the external privilege-elevation tool.
type Elevator interface {
	// Authenticate validates credentials, prompting the user if needed.
	Authenticate(ctx context.Context) error

	// Refresh re-touches the authorization without ever prompting.
	Refresh(ctx context.Context) error
}

// SudoElevator elevates through the system sudo binary.
type SudoElevator struct{}

// Authenticate runs `sudo -v` with the terminal attached so the user can
// enter a password.
func (SudoElevator) Authenticate(ctx context.Context) error {
	if _, err := exec.LookPath("sudo"); err != nil {
		return fmt.Errorf("%w: sudo", domain.ErrCommandNotFound)
	}

	cmd := exec.CommandContext(ctx, "sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sudo authentication failed: %w", err)
	}

	return nil
}

// Refresh runs `sudo -nv`; -n guarantees it can never block on a hidden
// password prompt.
func (SudoElevator) Refresh(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "sudo", "-nv").Run(); err != nil {
		return fmt.Errorf("sudo refresh failed: %w", err)
	}

	return nil
}

// Session is the process-wide privilege session. The keepalive goroutine is
// the only writer of lastRefresh; all other code paths only read it.
type Session struct {
	elevator Elevator
	now      func() time.Time
	euid     func() int

	mu            sync.Mutex
	authenticated bool
	acquireFailed bool
	lastRefresh   time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates an unauthenticated session backed by the elevator.
func NewSession(elevator Elevator) *Session {
	return &Session{
		elevator: elevator,
		now:      time.Now,
		euid:     os.Geteuid,
	}
}

// Acquire authenticates once. A failed acquire is remembered: every later
// call returns PERMISSION_DENIED immediately instead of prompting again,
// so a batch can never hang on a hidden password prompt mid-operation.
func (s *Session) Acquire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.authenticated {
		return nil
	}

	if s.acquireFailed {
		return domain.NewFailure(domain.CodePermissionDenied,
			"privilege elevation already failed this run", nil)
	}

	if s.euid() == 0 {
		s.authenticated = true
		s.lastRefresh = s.now()

		return nil
	}

	if err := s.elevator.Authenticate(ctx); err != nil {
		s.acquireFailed = true

		return domain.NewFailure(domain.CodePermissionDenied, err.Error(), nil)
	}

	s.authenticated = true
	s.lastRefresh = s.now()

	return nil
}

// Require fails fast when no usable session exists. Called by the command
// executor before every privileged invocation, so a lapsed timestamp is
// reported as a permission failure instead of surfacing later as an opaque
// sudo -n error.
func (s *Session) Require() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		return domain.NewFailure(domain.CodePermissionDenied,
			"no privilege session: authentication missing or previously failed", nil)
	}

	if s.now().Sub(s.lastRefresh) > timestampWindow {
		return domain.NewFailure(domain.CodePermissionDenied,
			"privilege session expired: keepalive has not refreshed the sudo timestamp", nil)
	}

	return nil
}

// Authenticated reports whether Acquire has succeeded this run.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authenticated
}

// Expired is derived state: true once the elevation timestamp would have
// lapsed without a refresh.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		return true
	}

	return s.now().Sub(s.lastRefresh) > timestampWindow
}

// LastRefresh returns the time of the most recent keepalive tick.
func (s *Session) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastRefresh
}

// StartKeepalive launches the background refresh loop. The tick does a pure
// fire-and-forget refresh: it takes no lock across the external call and
// its result is consumed by nobody, so it can never deadlock against a
// running batch. Calling it twice or on an unauthenticated session is a
// no-op.
func (s *Session) StartKeepalive(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated || s.cancel != nil {
		return
	}

	if interval <= 0 {
		interval = DefaultKeepaliveInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.keepalive(ctx, interval, s.done)
}

func (s *Session) keepalive(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A failed refresh leaves lastRefresh untouched, so Expired
			// turns true once the window lapses.
			if err := s.elevator.Refresh(ctx); err != nil {
				continue
			}

			s.mu.Lock()
			s.lastRefresh = s.now()
			s.mu.Unlock()
		}
	}
}

// Shutdown cancels the keepalive task and waits for it to exit, so no
// orphaned background work survives the process.
func (s *Session) Shutdown() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}
