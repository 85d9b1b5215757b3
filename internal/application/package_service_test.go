// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mttk2004/arch-manager/internal/catalog"
	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/protocol"
	"github.com/mttk2004/arch-manager/internal/testutil"
)

func newPackageService(manager *testutil.MockPackageManager) (*PackageService, *catalog.Cache) {
	cache := catalog.New(manager)

	return NewPackageService(manager, cache), cache
}

func batchData(t *testing.T, env *protocol.Envelope) *protocol.BatchResult {
	t.Helper()

	result, ok := env.Data.(*protocol.BatchResult)
	require.True(t, ok, "envelope data is not a batch result")

	return result
}

func TestInstall_PartitionsMixedBatch(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("IsInstalled", mock.Anything, "a").Return(true, nil)
	manager.On("IsInstalled", mock.Anything, "b").Return(false, nil)
	manager.On("IsInstalled", mock.Anything, "c").Return(false, nil)
	manager.On("Install", mock.Anything, "b").Return(nil)
	manager.On("Install", mock.Anything, "c").
		Return(domain.NewFailure(domain.CodeSystemError, "target not found: c", nil))

	service, _ := newPackageService(manager)

	env := service.Install(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, protocol.StatusWarning, env.Status)

	result := batchData(t, env)
	assert.Equal(t, []string{"a"}, result.AlreadyInState)
	assert.Equal(t, []string{"b"}, result.Succeeded)
	assert.Equal(t, []string{"c"}, result.Failed)
	assert.Equal(t, "target not found: c", result.FailureReasons["c"])

	manager.AssertNotCalled(t, "Install", mock.Anything, "a")
}

func TestInstall_EmptyInputMakesNoManagerCalls(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	service, _ := newPackageService(manager)

	env := service.Install(context.Background(), nil)

	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodeValidationError, env.Error.Code)
	manager.AssertNotCalled(t, "IsInstalled", mock.Anything, mock.Anything)
	manager.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
}

func TestInstall_DuplicatesProcessedOnce(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("IsInstalled", mock.Anything, "vim").Return(false, nil).Once()
	manager.On("Install", mock.Anything, "vim").Return(nil).Once()

	service, _ := newPackageService(manager)

	env := service.Install(context.Background(), []string{"vim", "vim", " vim"})

	assert.Equal(t, protocol.StatusSuccess, env.Status)
	assert.Equal(t, []string{"vim"}, batchData(t, env).Succeeded)
	manager.AssertExpectations(t)
}

func TestInstall_SuccessfulMutationInvalidatesInstalledCatalog(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("ListInstalledNames", mock.Anything).Return([]string{"git"}, nil).Twice()
	manager.On("IsInstalled", mock.Anything, "vim").Return(false, nil)
	manager.On("Install", mock.Anything, "vim").Return(nil)

	service, cache := newPackageService(manager)

	_, err := cache.Installed(context.Background(), false)
	require.NoError(t, err)

	service.Install(context.Background(), []string{"vim"})

	// The memoized catalog must be dropped, forcing a fresh query.
	_, err = cache.Installed(context.Background(), false)
	require.NoError(t, err)
	manager.AssertExpectations(t)
}

func TestInstall_NoOpBatchKeepsCatalogCached(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("ListInstalledNames", mock.Anything).Return([]string{"git"}, nil).Once()
	manager.On("IsInstalled", mock.Anything, "git").Return(true, nil)

	service, cache := newPackageService(manager)

	_, err := cache.Installed(context.Background(), false)
	require.NoError(t, err)

	env := service.Install(context.Background(), []string{"git"})
	assert.Equal(t, protocol.StatusSuccess, env.Status)

	_, err = cache.Installed(context.Background(), false)
	require.NoError(t, err)
	manager.AssertExpectations(t)
}

func TestRemove_AbsentPackageIsAlreadyInState(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("IsInstalled", mock.Anything, "ghost").Return(false, nil)

	service, _ := newPackageService(manager)

	env := service.Remove(context.Background(), []string{"ghost"})

	assert.Equal(t, protocol.StatusSuccess, env.Status)
	assert.Equal(t, []string{"ghost"}, batchData(t, env).AlreadyInState)
	manager.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func TestSearch_EmptyQueryIsValidationError(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	service, _ := newPackageService(manager)

	env := service.Search(context.Background(), "", false)

	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodeValidationError, env.Error.Code)
	manager.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_PartitionsByOrigin(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("Search", mock.Anything, "grep", true).Return([]domain.SearchResult{
		{Name: "ripgrep", Repository: "extra"},
		{Name: "ripgrep-all", Repository: "aur"},
	}, nil)

	service, _ := newPackageService(manager)

	env := service.Search(context.Background(), "grep", true)

	require.Equal(t, protocol.StatusSuccess, env.Status)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["official"], 1)
	assert.Len(t, data["aur"], 1)
	assert.Equal(t, 2, data["total_count"])
}

func TestSearch_NoMatchesIsInfo(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("Search", mock.Anything, "xyzzy", false).Return([]domain.SearchResult{}, nil)

	service, _ := newPackageService(manager)

	env := service.Search(context.Background(), "xyzzy", false)

	assert.Equal(t, protocol.StatusInfo, env.Status)
}

func TestCheckUpdates_UpToDateIsInfo(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("CheckUpdates", mock.Anything).Return([]domain.UpdateCandidate(nil), nil)

	service, _ := newPackageService(manager)

	env := service.CheckUpdates(context.Background())

	assert.Equal(t, protocol.StatusInfo, env.Status)
	assert.Equal(t, "system is up to date", env.Message)
}

func TestUpdateSystem_InvalidatesBothCatalogs(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("ListInstalledNames", mock.Anything).Return([]string{"git"}, nil).Twice()
	manager.On("ListAvailableNames", mock.Anything).Return([]string{"git", "vim"}, nil).Twice()
	manager.On("UpdateSystem", mock.Anything).Return(nil)

	service, cache := newPackageService(manager)

	_, err := cache.Installed(context.Background(), false)
	require.NoError(t, err)
	_, err = cache.Available(context.Background(), false)
	require.NoError(t, err)

	env := service.UpdateSystem(context.Background())
	assert.Equal(t, protocol.StatusSuccess, env.Status)

	_, err = cache.Installed(context.Background(), false)
	require.NoError(t, err)
	_, err = cache.Available(context.Background(), false)
	require.NoError(t, err)
	manager.AssertExpectations(t)
}

func TestAvailableNames_ServedFromCache(t *testing.T) {
	t.Parallel()

	manager := &testutil.MockPackageManager{}
	manager.On("ListAvailableNames", mock.Anything).Return([]string{"git", "vim"}, nil).Once()

	service, _ := newPackageService(manager)

	first := service.AvailableNames(context.Background(), false)
	second := service.AvailableNames(context.Background(), false)

	assert.Equal(t, protocol.StatusSuccess, first.Status)
	assert.Equal(t, protocol.StatusSuccess, second.Status)
	manager.AssertExpectations(t)
}
