// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package arch implements the package-manager ports on top of pacman and
// friends (paru, paccache, reflector, fontconfig). All semantics are
// delegated to the external binaries; this layer only builds argument
// vectors and parses their output.
package arch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/versions"
)

// Pacman implements the PackageManager port.
type Pacman struct {
	runner    domain.CommandRunner
	pacmanBin string
	aurHelper string // empty when no AUR helper is configured
}

// NewPacman creates the adapter. Empty bin names fall back to defaults.
func NewPacman(runner domain.CommandRunner, pacmanBin, aurHelper string) *Pacman {
	if pacmanBin == "" {
		pacmanBin = "pacman"
	}

	return &Pacman{
		runner:    runner,
		pacmanBin: pacmanBin,
		aurHelper: aurHelper,
	}
}

// IsInstalled checks the local database for the package.
func (p *Pacman) IsInstalled(ctx context.Context, name string) (bool, error) {
	outcome, err := p.runner.Execute(ctx, p.pacmanBin, "-Qi", name)
	if err != nil {
		return false, err
	}

	return outcome.Succeeded(), nil
}

// Install installs one package. --needed makes the call idempotent when the
// package appeared between the installed-check and now.
func (p *Pacman) Install(ctx context.Context, name string) error {
	args := []string{"-S", "--noconfirm", "--needed", name}

	outcome, err := p.runner.ExecuteRoot(ctx, p.pacmanBin, args...)
	if err != nil {
		return err
	}

	if !outcome.Succeeded() {
		return domain.SystemFailure(fmt.Sprintf("%s -S --noconfirm --needed %s", p.pacmanBin, name), outcome)
	}

	return nil
}

// Remove removes one package.
func (p *Pacman) Remove(ctx context.Context, name string) error {
	outcome, err := p.runner.ExecuteRoot(ctx, p.pacmanBin, "-R", "--noconfirm", name)
	if err != nil {
		return err
	}

	if !outcome.Succeeded() {
		return domain.SystemFailure(fmt.Sprintf("%s -R --noconfirm %s", p.pacmanBin, name), outcome)
	}

	return nil
}

// Search queries the official repositories, and the AUR helper when asked.
func (p *Pacman) Search(ctx context.Context, query string, aur bool) ([]domain.SearchResult, error) {
	outcome, err := p.runner.Execute(ctx, p.pacmanBin, "-Ss", query)
	if err != nil {
		return nil, err
	}

	// pacman -Ss exits 1 for "no matches", which is not a failure here.
	results := parseSearchOutput(outcome.Stdout)

	if aur && p.aurHelper != "" {
		aurOutcome, err := p.runner.Execute(ctx, p.aurHelper, "-Ss", "--aur", query)
		if err != nil {
			return nil, err
		}

		results = append(results, parseSearchOutput(aurOutcome.Stdout)...)
	}

	return results, nil
}

// Info returns details for one package, preferring the local database so
// installed state and actual installed size are accurate.
func (p *Pacman) Info(ctx context.Context, name string) (*domain.PackageInfo, error) {
	outcome, err := p.runner.Execute(ctx, p.pacmanBin, "-Qi", name)
	if err != nil {
		return nil, err
	}

	if outcome.Succeeded() {
		info := parseInfoOutput(outcome.Stdout)
		info.Installed = true

		return info, nil
	}

	outcome, err = p.runner.Execute(ctx, p.pacmanBin, "-Si", name)
	if err != nil {
		return nil, err
	}

	if !outcome.Succeeded() {
		return nil, domain.NewFailure(domain.CodeValidationError,
			fmt.Sprintf("package %q not found", name),
			map[string]any{"package": name})
	}

	return parseInfoOutput(outcome.Stdout), nil
}

// ListInstalled returns installed packages with versions.
func (p *Pacman) ListInstalled(ctx context.Context, explicitOnly bool) ([]domain.InstalledPackage, error) {
	flag := "-Q"
	if explicitOnly {
		flag = "-Qe"
	}

	outcome, err := p.runner.Execute(ctx, p.pacmanBin, flag)
	if err != nil {
		return nil, err
	}

	if !outcome.Succeeded() {
		return nil, domain.SystemFailure(p.pacmanBin+" "+flag, outcome)
	}

	var packages []domain.InstalledPackage

	for _, line := range nonEmptyLines(outcome.Stdout) {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			packages = append(packages, domain.InstalledPackage{Name: fields[0], Version: fields[1]})
		}
	}

	return packages, nil
}

// ListAvailableNames enumerates every installable package name.
func (p *Pacman) ListAvailableNames(ctx context.Context) ([]string, error) {
	outcome, err := p.runner.Execute(ctx, p.pacmanBin, "-Slq")
	if err != nil {
		return nil, err
	}

	if !outcome.Succeeded() {
		return nil, domain.SystemFailure(p.pacmanBin+" -Slq", outcome)
	}

	return nonEmptyLines(outcome.Stdout), nil
}

// ListInstalledNames enumerates every installed package name.
func (p *Pacman) ListInstalledNames(ctx context.Context) ([]string, error) {
	outcome, err := p.runner.Execute(ctx, p.pacmanBin, "-Qq")
	if err != nil {
		return nil, err
	}

	if !outcome.Succeeded() {
		return nil, domain.SystemFailure(p.pacmanBin+" -Qq", outcome)
	}

	return nonEmptyLines(outcome.Stdout), nil
}

// UpdateSystem performs a full upgrade.
func (p *Pacman) UpdateSystem(ctx context.Context) error {
	outcome, err := p.runner.ExecuteRoot(ctx, p.pacmanBin, "-Syu", "--noconfirm")
	if err != nil {
		return err
	}

	if !outcome.Succeeded() {
		return domain.SystemFailure(p.pacmanBin+" -Syu --noconfirm", outcome)
	}

	return nil
}

// CheckUpdates lists pending updates via checkupdates, which works against a
// temporary database copy and never needs privileges.
func (p *Pacman) CheckUpdates(ctx context.Context) ([]domain.UpdateCandidate, error) {
	outcome, err := p.runner.Execute(ctx, "checkupdates")
	if err != nil {
		return nil, err
	}

	// checkupdates exits 2 when there is nothing to do.
	if outcome.ExitCode == 2 {
		return nil, nil
	}

	if !outcome.Succeeded() {
		return nil, domain.SystemFailure("checkupdates", outcome)
	}

	var updates []domain.UpdateCandidate

	for _, line := range nonEmptyLines(outcome.Stdout) {
		candidate, err := versions.ParseUpdateLine(line)
		if err != nil {
			continue
		}

		// checkupdates can report downgrades after a mirror rollback;
		// those are not pending updates.
		if !versions.IsUpgrade(candidate.Current, candidate.Candidate) {
			continue
		}

		updates = append(updates, *candidate)
	}

	return updates, nil
}

// parseSearchOutput parses `pacman -Ss` output: a "repo/name version
// [installed]" header line followed by an indented description line.
func parseSearchOutput(output string) []domain.SearchResult {
	var (
		results []domain.SearchResult
		current *domain.SearchResult
	)

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if current != nil {
				current.Description = strings.TrimSpace(line)
				results = append(results, *current)
				current = nil
			}

			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.Contains(fields[0], "/") {
			continue
		}

		repo, name, _ := strings.Cut(fields[0], "/")
		current = &domain.SearchResult{
			Name:       name,
			Repository: repo,
			Version:    fields[1],
			Installed:  strings.Contains(line, "[installed"),
		}
	}

	if current != nil {
		results = append(results, *current)
	}

	return results
}

// parseInfoOutput parses the `Field : value` blocks of pacman -Qi/-Si.
func parseInfoOutput(output string) *domain.PackageInfo {
	info := &domain.PackageInfo{}

	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			info.Name = value
		case "Version":
			info.Version = value
		case "Repository":
			info.Repository = value
		case "Description":
			info.Description = value
		case "URL":
			// The URL itself contains a colon; re-split with a limit.
			if _, full, ok := strings.Cut(line, ": "); ok {
				info.URL = strings.TrimSpace(full)
			}
		case "Installed Size":
			info.InstalledSize = value
		}
	}

	return info
}

func nonEmptyLines(output string) []string {
	var lines []string

	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
