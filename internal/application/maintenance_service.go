// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package application

import (
	"context"
	"fmt"

	"github.com/mttk2004/arch-manager/internal/catalog"
	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/protocol"
)

// MaintenanceService orchestrates system maintenance actions.
type MaintenanceService struct {
	maint domain.Maintainer
	cache *catalog.Cache
}

// NewMaintenanceService creates the service.
func NewMaintenanceService(maint domain.Maintainer, cache *catalog.Cache) *MaintenanceService {
	return &MaintenanceService{
		maint: maint,
		cache: cache,
	}
}

// CleanCache prunes the package cache, keeping the given number of versions.
func (s *MaintenanceService) CleanCache(ctx context.Context, keep int) *protocol.Envelope {
	if keep < 0 {
		return protocol.Failure(domain.CodeValidationError,
			fmt.Sprintf("keep must be non-negative, got %d", keep),
			map[string]any{"keep": keep})
	}

	output, err := s.maint.CleanCache(ctx, keep)
	if err != nil {
		return protocol.FromError(err)
	}

	data := map[string]any{
		"kept_versions": keep,
		"output":        output,
	}

	return protocol.Success(fmt.Sprintf("package cache cleaned, keeping %d version(s)", keep), data)
}

// RemoveOrphans removes packages that were installed as dependencies and
// are no longer required by anything.
func (s *MaintenanceService) RemoveOrphans(ctx context.Context) *protocol.Envelope {
	orphans, err := s.maint.Orphans(ctx)
	if err != nil {
		return protocol.FromError(err)
	}

	if len(orphans) == 0 {
		return protocol.Info("no orphaned packages found", map[string]any{"removed": []string{}, "count": 0})
	}

	if err := s.maint.RemoveOrphans(ctx, orphans); err != nil {
		return protocol.FromError(err)
	}

	s.cache.Invalidate(catalog.ScopeInstalled)

	data := map[string]any{
		"removed": orphans,
		"count":   len(orphans),
	}

	return protocol.Success(fmt.Sprintf("removed %d orphaned package(s)", len(orphans)), data)
}

// CheckBroken reports database and file inconsistencies.
func (s *MaintenanceService) CheckBroken(ctx context.Context) *protocol.Envelope {
	problems, err := s.maint.CheckBroken(ctx)
	if err != nil {
		return protocol.FromError(err)
	}

	data := map[string]any{
		"problems": problems,
		"count":    len(problems),
	}

	if len(problems) == 0 {
		return protocol.Success("no broken packages detected", data)
	}

	return protocol.Warning(fmt.Sprintf("%d problem(s) detected", len(problems)), data)
}

// UpdateMirrors regenerates the mirror list. Mirror rotation changes
// download sources, not the package name universe, so no cache entry is
// invalidated.
func (s *MaintenanceService) UpdateMirrors(ctx context.Context, country string, count int) *protocol.Envelope {
	if count <= 0 {
		return protocol.Failure(domain.CodeValidationError,
			fmt.Sprintf("mirror count must be positive, got %d", count),
			map[string]any{"count": count})
	}

	if err := s.maint.UpdateMirrors(ctx, country, count); err != nil {
		return protocol.FromError(err)
	}

	message := fmt.Sprintf("mirror list updated with %d mirror(s)", count)
	if country != "" {
		message = fmt.Sprintf("mirror list updated with %d mirror(s) from %s", count, country)
	}

	return protocol.Success(message, map[string]any{"count": count, "country": country})
}
