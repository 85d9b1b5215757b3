// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package application wires the batch tracker, the catalog cache and the
// package-manager adapters into the bridge actions.
package application

import (
	"context"
	"fmt"

	"github.com/mttk2004/arch-manager/internal/batch"
	"github.com/mttk2004/arch-manager/internal/catalog"
	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/protocol"
)

// BatchObserver receives per-item progress notifications.
type BatchObserver func(item string, class batch.Class)

// PackageService orchestrates package actions with per-item outcome
// tracking and cache invalidation.
type PackageService struct {
	manager domain.PackageManager
	cache   *catalog.Cache

	// Observer, when set, is attached to every batch run.
	Observer BatchObserver
}

// NewPackageService creates the service.
func NewPackageService(manager domain.PackageManager, cache *catalog.Cache) *PackageService {
	return &PackageService{
		manager: manager,
		cache:   cache,
	}
}

// Install installs the given packages as one batch. Already-installed
// packages are classified as no-ops without invoking the package manager.
// Cache invalidation is a required post-condition of any mutation.
func (s *PackageService) Install(ctx context.Context, names []string) *protocol.Envelope {
	result, env := s.runBatch(ctx, installOperation{manager: s.manager}, names)
	if result != nil && result.SucceededCount > 0 {
		s.cache.Invalidate(catalog.ScopeInstalled)
	}

	return env
}

// Remove removes the given packages as one batch. Packages that are not
// installed are classified as already in the desired state.
func (s *PackageService) Remove(ctx context.Context, names []string) *protocol.Envelope {
	result, env := s.runBatch(ctx, removeOperation{manager: s.manager}, names)
	if result != nil && result.SucceededCount > 0 {
		s.cache.Invalidate(catalog.ScopeInstalled)
	}

	return env
}

func (s *PackageService) runBatch(ctx context.Context, op batch.Operation, names []string) (*protocol.BatchResult, *protocol.Envelope) {
	tracker := batch.New(op)
	tracker.OnItem = s.Observer

	return tracker.Run(ctx, names)
}

// Search queries the repositories and partitions results by origin.
func (s *PackageService) Search(ctx context.Context, query string, aur bool) *protocol.Envelope {
	if query == "" {
		return protocol.Failure(domain.CodeValidationError, "search query is required", nil)
	}

	results, err := s.manager.Search(ctx, query, aur)
	if err != nil {
		return protocol.FromError(err)
	}

	official := make([]domain.SearchResult, 0, len(results))
	aurResults := make([]domain.SearchResult, 0)

	for _, result := range results {
		if result.Repository == "aur" {
			aurResults = append(aurResults, result)
		} else {
			official = append(official, result)
		}
	}

	data := map[string]any{
		"official":    official,
		"aur":         aurResults,
		"total_count": len(results),
	}

	if len(results) == 0 {
		return protocol.Info(fmt.Sprintf("no packages found matching %q", query), data)
	}

	return protocol.Success(fmt.Sprintf("found %d matching package(s)", len(results)), data)
}

// Info returns details for one package.
func (s *PackageService) Info(ctx context.Context, name string) *protocol.Envelope {
	if name == "" {
		return protocol.Failure(domain.CodeValidationError, "package name is required", nil)
	}

	info, err := s.manager.Info(ctx, name)
	if err != nil {
		return protocol.FromError(err)
	}

	return protocol.Success(fmt.Sprintf("package %s", info.Name), info)
}

// ListInstalled returns installed packages with versions.
func (s *PackageService) ListInstalled(ctx context.Context, explicitOnly bool) *protocol.Envelope {
	packages, err := s.manager.ListInstalled(ctx, explicitOnly)
	if err != nil {
		return protocol.FromError(err)
	}

	data := map[string]any{
		"packages": packages,
		"count":    len(packages),
	}

	return protocol.Success(fmt.Sprintf("%d installed package(s)", len(packages)), data)
}

// AvailableNames returns the memoized installable-name catalog.
func (s *PackageService) AvailableNames(ctx context.Context, force bool) *protocol.Envelope {
	names, err := s.cache.Available(ctx, force)
	if err != nil {
		return protocol.FromError(err)
	}

	return namesEnvelope(names)
}

// InstalledNames returns the memoized installed-name catalog.
func (s *PackageService) InstalledNames(ctx context.Context, force bool) *protocol.Envelope {
	names, err := s.cache.Installed(ctx, force)
	if err != nil {
		return protocol.FromError(err)
	}

	return namesEnvelope(names)
}

// UpdateSystem performs a full upgrade and drops both catalogs: an upgrade
// can change the installed set and pull in brand-new package names.
func (s *PackageService) UpdateSystem(ctx context.Context) *protocol.Envelope {
	if err := s.manager.UpdateSystem(ctx); err != nil {
		return protocol.FromError(err)
	}

	s.cache.Invalidate(catalog.ScopeAll)

	return protocol.Success("system update completed", nil)
}

// CheckUpdates lists pending updates without mutating anything.
func (s *PackageService) CheckUpdates(ctx context.Context) *protocol.Envelope {
	updates, err := s.manager.CheckUpdates(ctx)
	if err != nil {
		return protocol.FromError(err)
	}

	data := map[string]any{
		"updates": updates,
		"count":   len(updates),
	}

	if len(updates) == 0 {
		return protocol.Info("system is up to date", data)
	}

	return protocol.Success(fmt.Sprintf("%d update(s) pending", len(updates)), data)
}

func namesEnvelope(names []string) *protocol.Envelope {
	if names == nil {
		names = []string{}
	}

	data := map[string]any{
		"packages": names,
		"count":    len(names),
	}

	return protocol.Success(fmt.Sprintf("%d package name(s)", len(names)), data)
}

// installOperation installs packages one at a time through the manager.
type installOperation struct {
	manager domain.PackageManager
}

func (o installOperation) Name() string { return "install" }

func (o installOperation) AlreadySatisfied(ctx context.Context, item string) (bool, error) {
	return o.manager.IsInstalled(ctx, item)
}

func (o installOperation) Apply(ctx context.Context, item string) error {
	return o.manager.Install(ctx, item)
}

// removeOperation removes packages one at a time; an absent package already
// satisfies the target state.
type removeOperation struct {
	manager domain.PackageManager
}

func (o removeOperation) Name() string { return "remove" }

func (o removeOperation) AlreadySatisfied(ctx context.Context, item string) (bool, error) {
	installed, err := o.manager.IsInstalled(ctx, item)
	if err != nil {
		return false, err
	}

	return !installed, nil
}

func (o removeOperation) Apply(ctx context.Context, item string) error {
	return o.manager.Remove(ctx, item)
}
