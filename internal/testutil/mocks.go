// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package testutil provides shared port mocks for tests.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mttk2004/arch-manager/internal/domain"
)

// MockCommandRunner mocks the CommandRunner port.
type MockCommandRunner struct {
	mock.Mock
}

// Execute mocks a plain command invocation.
func (m *MockCommandRunner) Execute(ctx context.Context, name string, args ...string) (*domain.Outcome, error) {
	callArgs := m.Called(ctx, name, args)
	if outcome := callArgs.Get(0); outcome != nil {
		return outcome.(*domain.Outcome), callArgs.Error(1)
	}

	return nil, callArgs.Error(1)
}

// ExecuteRoot mocks a privileged command invocation.
func (m *MockCommandRunner) ExecuteRoot(ctx context.Context, name string, args ...string) (*domain.Outcome, error) {
	callArgs := m.Called(ctx, name, args)
	if outcome := callArgs.Get(0); outcome != nil {
		return outcome.(*domain.Outcome), callArgs.Error(1)
	}

	return nil, callArgs.Error(1)
}

// CommandExists mocks PATH lookup.
func (m *MockCommandRunner) CommandExists(name string) bool {
	return m.Called(name).Bool(0)
}

// MockPackageManager mocks the PackageManager port.
type MockPackageManager struct {
	mock.Mock
}

// IsInstalled mocks the installed-state probe.
func (m *MockPackageManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)

	return args.Bool(0), args.Error(1)
}

// Install mocks a single package installation.
func (m *MockPackageManager) Install(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Remove mocks a single package removal.
func (m *MockPackageManager) Remove(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Search mocks a repository search.
func (m *MockPackageManager) Search(ctx context.Context, query string, aur bool) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, aur)
	if results := args.Get(0); results != nil {
		return results.([]domain.SearchResult), args.Error(1)
	}

	return nil, args.Error(1)
}

// Info mocks a package detail lookup.
func (m *MockPackageManager) Info(ctx context.Context, name string) (*domain.PackageInfo, error) {
	args := m.Called(ctx, name)
	if info := args.Get(0); info != nil {
		return info.(*domain.PackageInfo), args.Error(1)
	}

	return nil, args.Error(1)
}

// ListInstalled mocks the installed-package listing.
func (m *MockPackageManager) ListInstalled(ctx context.Context, explicitOnly bool) ([]domain.InstalledPackage, error) {
	args := m.Called(ctx, explicitOnly)
	if packages := args.Get(0); packages != nil {
		return packages.([]domain.InstalledPackage), args.Error(1)
	}

	return nil, args.Error(1)
}

// ListAvailableNames mocks the installable-name enumeration.
func (m *MockPackageManager) ListAvailableNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names := args.Get(0); names != nil {
		return names.([]string), args.Error(1)
	}

	return nil, args.Error(1)
}

// ListInstalledNames mocks the installed-name enumeration.
func (m *MockPackageManager) ListInstalledNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names := args.Get(0); names != nil {
		return names.([]string), args.Error(1)
	}

	return nil, args.Error(1)
}

// UpdateSystem mocks a full system upgrade.
func (m *MockPackageManager) UpdateSystem(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// CheckUpdates mocks the pending-update listing.
func (m *MockPackageManager) CheckUpdates(ctx context.Context) ([]domain.UpdateCandidate, error) {
	args := m.Called(ctx)
	if updates := args.Get(0); updates != nil {
		return updates.([]domain.UpdateCandidate), args.Error(1)
	}

	return nil, args.Error(1)
}

// MockMaintainer mocks the Maintainer port.
type MockMaintainer struct {
	mock.Mock
}

// CleanCache mocks package cache pruning.
func (m *MockMaintainer) CleanCache(ctx context.Context, keep int) (string, error) {
	args := m.Called(ctx, keep)

	return args.String(0), args.Error(1)
}

// Orphans mocks the orphan listing.
func (m *MockMaintainer) Orphans(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names := args.Get(0); names != nil {
		return names.([]string), args.Error(1)
	}

	return nil, args.Error(1)
}

// RemoveOrphans mocks orphan removal.
func (m *MockMaintainer) RemoveOrphans(ctx context.Context, names []string) error {
	return m.Called(ctx, names).Error(0)
}

// CheckBroken mocks the consistency check.
func (m *MockMaintainer) CheckBroken(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if problems := args.Get(0); problems != nil {
		return problems.([]string), args.Error(1)
	}

	return nil, args.Error(1)
}

// UpdateMirrors mocks mirror list regeneration.
func (m *MockMaintainer) UpdateMirrors(ctx context.Context, country string, count int) error {
	return m.Called(ctx, country, count).Error(0)
}

// MockFontTools mocks the FontTools port.
type MockFontTools struct {
	mock.Mock
}

// ListInstalledFamilies mocks the family listing.
func (m *MockFontTools) ListInstalledFamilies(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if families := args.Get(0); families != nil {
		return families.([]string), args.Error(1)
	}

	return nil, args.Error(1)
}

// SearchFamilies mocks the family search.
func (m *MockFontTools) SearchFamilies(ctx context.Context, pattern string) ([]string, error) {
	args := m.Called(ctx, pattern)
	if families := args.Get(0); families != nil {
		return families.([]string), args.Error(1)
	}

	return nil, args.Error(1)
}

// RebuildCache mocks the font cache rebuild.
func (m *MockFontTools) RebuildCache(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
