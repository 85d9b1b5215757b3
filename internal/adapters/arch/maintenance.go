// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package arch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mttk2004/arch-manager/internal/domain"
)

// Maintenance implements the Maintainer port via paccache, reflector and
// pacman's orphan queries.
type Maintenance struct {
	runner    domain.CommandRunner
	pacmanBin string
}

// NewMaintenance creates the maintenance adapter.
func NewMaintenance(runner domain.CommandRunner, pacmanBin string) *Maintenance {
	if pacmanBin == "" {
		pacmanBin = "pacman"
	}

	return &Maintenance{
		runner:    runner,
		pacmanBin: pacmanBin,
	}
}

// CleanCache prunes the package cache with paccache, keeping the given
// number of versions per package.
func (m *Maintenance) CleanCache(ctx context.Context, keep int) (string, error) {
	outcome, err := m.runner.ExecuteRoot(ctx, "paccache", "-r", "-k", strconv.Itoa(keep))
	if err != nil {
		return "", err
	}

	if !outcome.Succeeded() {
		return "", domain.SystemFailure(fmt.Sprintf("paccache -r -k %d", keep), outcome)
	}

	return strings.TrimSpace(outcome.Stdout), nil
}

// Orphans lists packages installed as dependencies that nothing depends on.
func (m *Maintenance) Orphans(ctx context.Context) ([]string, error) {
	outcome, err := m.runner.Execute(ctx, m.pacmanBin, "-Qtdq")
	if err != nil {
		return nil, err
	}

	// pacman -Qtdq exits 1 when there are no orphans.
	if !outcome.Succeeded() {
		return nil, nil
	}

	return nonEmptyLines(outcome.Stdout), nil
}

// RemoveOrphans removes the given orphans recursively with their configs.
func (m *Maintenance) RemoveOrphans(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	args := append([]string{"-Rns", "--noconfirm"}, names...)

	outcome, err := m.runner.ExecuteRoot(ctx, m.pacmanBin, args...)
	if err != nil {
		return err
	}

	if !outcome.Succeeded() {
		return domain.SystemFailure(m.pacmanBin+" -Rns --noconfirm "+strings.Join(names, " "), outcome)
	}

	return nil
}

// CheckBroken reports database/file inconsistencies from pacman -Dk.
func (m *Maintenance) CheckBroken(ctx context.Context) ([]string, error) {
	outcome, err := m.runner.Execute(ctx, m.pacmanBin, "-Dk")
	if err != nil {
		return nil, err
	}

	if outcome.Succeeded() {
		return nil, nil
	}

	problems := nonEmptyLines(outcome.Stdout)
	problems = append(problems, nonEmptyLines(outcome.Stderr)...)

	return problems, nil
}

// UpdateMirrors regenerates the mirror list with reflector, sorted by rate.
func (m *Maintenance) UpdateMirrors(ctx context.Context, country string, count int) error {
	args := []string{
		"--protocol", "https",
		"--latest", strconv.Itoa(count),
		"--sort", "rate",
		"--save", "/etc/pacman.d/mirrorlist",
	}
	if country != "" {
		args = append(args, "--country", country)
	}

	outcome, err := m.runner.ExecuteRoot(ctx, "reflector", args...)
	if err != nil {
		return err
	}

	if !outcome.Succeeded() {
		return domain.SystemFailure("reflector "+strings.Join(args, " "), outcome)
	}

	return nil
}
