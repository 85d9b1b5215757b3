// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/mttk2004/arch-manager/internal/batch"
	"github.com/mttk2004/arch-manager/internal/catalog"
	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/protocol"
)

// FontService manages font sets. Font packages install through the same
// batch machinery as regular packages; fontconfig handles listing and the
// cache rebuild after mutations.
type FontService struct {
	manager domain.PackageManager
	tools   domain.FontTools
	sets    []domain.FontSet
	cache   *catalog.Cache

	Observer BatchObserver
}

// NewFontService creates the service over a static set catalog.
func NewFontService(manager domain.PackageManager, tools domain.FontTools, sets []domain.FontSet, cache *catalog.Cache) *FontService {
	return &FontService{
		manager: manager,
		tools:   tools,
		sets:    sets,
		cache:   cache,
	}
}

// Sets returns the set catalog.
func (s *FontService) Sets() []domain.FontSet {
	return s.sets
}

// InstallSet installs a font set (or a named subset of it) as one batch and
// rebuilds the font cache when anything changed.
func (s *FontService) InstallSet(ctx context.Context, setName string, names []string) *protocol.Envelope {
	set, env := s.findSet(setName)
	if env != nil {
		return env
	}

	packages, env := s.resolveMembers(set, names)
	if env != nil {
		return env
	}

	tracker := batch.New(installOperation{manager: s.manager})
	tracker.OnItem = s.Observer

	result, env := tracker.Run(ctx, packages)
	s.afterMutation(ctx, result)

	return env
}

// RemoveSet removes a font set (or a named subset of it) as one batch.
func (s *FontService) RemoveSet(ctx context.Context, setName string, names []string) *protocol.Envelope {
	set, env := s.findSet(setName)
	if env != nil {
		return env
	}

	packages, env := s.resolveMembers(set, names)
	if env != nil {
		return env
	}

	tracker := batch.New(removeOperation{manager: s.manager})
	tracker.OnItem = s.Observer

	result, env := tracker.Run(ctx, packages)
	s.afterMutation(ctx, result)

	return env
}

// resolveMembers narrows a set to the requested packages. Names outside the
// set are a usage error, not a batch item: they are rejected up front so a
// font action can never touch an unrelated package.
func (s *FontService) resolveMembers(set *domain.FontSet, names []string) ([]string, *protocol.Envelope) {
	members, unknown := set.Resolve(names)
	if len(unknown) > 0 {
		return nil, protocol.Failure(domain.CodeValidationError,
			fmt.Sprintf("not part of font set %q: %s", set.Name, strings.Join(unknown, ", ")),
			map[string]any{"set": set.Name, "unknown_packages": unknown})
	}

	return members, nil
}

// afterMutation rebuilds the font cache and drops the catalog cache after
// any batch that actually changed state. The rebuild is best-effort: the
// batch outcome stands regardless.
func (s *FontService) afterMutation(ctx context.Context, result *protocol.BatchResult) {
	if result == nil || result.SucceededCount == 0 {
		return
	}

	s.cache.Invalidate(catalog.ScopeInstalled)

	_ = s.tools.RebuildCache(ctx)
}

// ListFamilies returns the installed font families.
func (s *FontService) ListFamilies(ctx context.Context) *protocol.Envelope {
	families, err := s.tools.ListInstalledFamilies(ctx)
	if err != nil {
		return protocol.FromError(err)
	}

	data := map[string]any{
		"families": families,
		"count":    len(families),
	}

	return protocol.Success(fmt.Sprintf("%d installed font families", len(families)), data)
}

// SearchFamilies returns installed families matching the pattern.
func (s *FontService) SearchFamilies(ctx context.Context, pattern string) *protocol.Envelope {
	if pattern == "" {
		return protocol.Failure(domain.CodeValidationError, "font search pattern is required", nil)
	}

	families, err := s.tools.SearchFamilies(ctx, pattern)
	if err != nil {
		return protocol.FromError(err)
	}

	data := map[string]any{
		"families": families,
		"count":    len(families),
	}

	if len(families) == 0 {
		return protocol.Info(fmt.Sprintf("no font families matching %q", pattern), data)
	}

	return protocol.Success(fmt.Sprintf("%d font families matching %q", len(families), pattern), data)
}

// UpdateCache forces a font cache rebuild.
func (s *FontService) UpdateCache(ctx context.Context) *protocol.Envelope {
	if err := s.tools.RebuildCache(ctx); err != nil {
		return protocol.FromError(err)
	}

	return protocol.Success("font cache rebuilt", nil)
}

func (s *FontService) findSet(name string) (*domain.FontSet, *protocol.Envelope) {
	for _, set := range s.sets {
		if set.Name == name {
			return &set, nil
		}
	}

	known := make([]string, 0, len(s.sets))
	for _, set := range s.sets {
		known = append(known, set.Name)
	}

	return nil, protocol.Failure(domain.CodeValidationError,
		fmt.Sprintf("%s: %q (known sets: %s)", domain.ErrUnknownFontSet.Error(), name, strings.Join(known, ", ")),
		map[string]any{"set": name, "known_sets": known})
}
