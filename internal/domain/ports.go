// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import "context"

// Outcome captures the result of one external process invocation.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports whether the process exited zero.
func (o *Outcome) Succeeded() bool {
	return o.ExitCode == 0
}

// CommandRunner defines the interface for executing system commands.
// Exactly one external process is spawned per call.
type CommandRunner interface {
	// Execute runs a command and captures its outcome. A non-zero exit is
	// reported in the Outcome, not as an error; errors are reserved for
	// classified failures (missing binary, deadline, cancelled context).
	Execute(ctx context.Context, name string, args ...string) (*Outcome, error)

	// ExecuteRoot runs a command through the privilege session. It fails
	// fast with PERMISSION_DENIED when no authenticated session exists.
	ExecuteRoot(ctx context.Context, name string, args ...string) (*Outcome, error)

	// CommandExists checks if a command is available on the system.
	CommandExists(name string) bool
}

// CatalogEnumerator enumerates the full installable/installed name catalogs.
// Both calls are slow (seconds-scale on large catalogs) and are memoized by
// the front-end cache.
type CatalogEnumerator interface {
	ListAvailableNames(ctx context.Context) ([]string, error)
	ListInstalledNames(ctx context.Context) ([]string, error)
}

// PackageManager defines package operations delegated to the external
// package manager binary.
type PackageManager interface {
	CatalogEnumerator

	// IsInstalled checks if a package is installed.
	IsInstalled(ctx context.Context, name string) (bool, error)

	// Install installs a single package.
	Install(ctx context.Context, name string) error

	// Remove removes a single package.
	Remove(ctx context.Context, name string) error

	// Search queries the official repositories, and the AUR when aur is set
	// and an AUR helper is available.
	Search(ctx context.Context, query string, aur bool) ([]SearchResult, error)

	// Info returns detailed information for one package.
	Info(ctx context.Context, name string) (*PackageInfo, error)

	// ListInstalled returns installed packages with versions, optionally
	// restricted to explicitly installed ones.
	ListInstalled(ctx context.Context, explicitOnly bool) ([]InstalledPackage, error)

	// UpdateSystem performs a full system upgrade.
	UpdateSystem(ctx context.Context) error

	// CheckUpdates lists pending updates without mutating anything.
	CheckUpdates(ctx context.Context) ([]UpdateCandidate, error)
}

// Maintainer defines system maintenance operations.
type Maintainer interface {
	// CleanCache prunes the package cache, keeping the given number of
	// versions per package. Returns the tool's summary output.
	CleanCache(ctx context.Context, keep int) (string, error)

	// Orphans lists packages installed as dependencies that nothing
	// requires anymore.
	Orphans(ctx context.Context) ([]string, error)

	// RemoveOrphans removes the given orphaned packages.
	RemoveOrphans(ctx context.Context, names []string) error

	// CheckBroken reports packages with missing files or broken metadata.
	CheckBroken(ctx context.Context) ([]string, error)

	// UpdateMirrors regenerates the mirror list, optionally restricted to a
	// country, keeping the given number of mirrors.
	UpdateMirrors(ctx context.Context, country string, count int) error
}

// FontTools defines fontconfig-side operations; font package installation
// itself goes through the PackageManager.
type FontTools interface {
	// ListInstalledFamilies returns the installed font family names.
	ListInstalledFamilies(ctx context.Context) ([]string, error)

	// SearchFamilies returns installed families matching the pattern.
	SearchFamilies(ctx context.Context, pattern string) ([]string, error)

	// RebuildCache forces a font cache rebuild.
	RebuildCache(ctx context.Context) error
}
