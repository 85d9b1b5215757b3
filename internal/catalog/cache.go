// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package catalog memoizes the expensive package-name enumerations so
// repeated interactive lookups are O(1) after the first call.
package catalog

import (
	"context"
	"sync"

	"github.com/mttk2004/arch-manager/internal/domain"
)

// Scope selects which cached sequences an invalidation clears.
type Scope int

// Invalidation scopes.
const (
	ScopeAvailable Scope = iota + 1
	ScopeInstalled
	ScopeAll
)

// Cache holds the memoized catalogs. Entries are nil-until-populated; a
// successful mutating batch must invalidate whichever entries it affects,
// since a stale cache would offer already-installed items as installable.
type Cache struct {
	enum domain.CatalogEnumerator

	mu           sync.Mutex
	available    []string
	hasAvailable bool
	installed    []string
	hasInstalled bool
}

// New creates an empty cache over the enumeration collaborator.
func New(enum domain.CatalogEnumerator) *Cache {
	return &Cache{enum: enum}
}

// Available returns the installable name catalog, querying the collaborator
// only on the first call or when force is set.
func (c *Cache) Available(ctx context.Context, force bool) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasAvailable && !force {
		return c.available, nil
	}

	names, err := c.enum.ListAvailableNames(ctx)
	if err != nil {
		return nil, err
	}

	c.available = names
	c.hasAvailable = true

	return c.available, nil
}

// Installed returns the installed name catalog, querying the collaborator
// only on the first call or when force is set.
func (c *Cache) Installed(ctx context.Context, force bool) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasInstalled && !force {
		return c.installed, nil
	}

	names, err := c.enum.ListInstalledNames(ctx)
	if err != nil {
		return nil, err
	}

	c.installed = names
	c.hasInstalled = true

	return c.installed, nil
}

// Invalidate clears the selected cached sequences.
func (c *Cache) Invalidate(scope Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scope == ScopeAvailable || scope == ScopeAll {
		c.available = nil
		c.hasAvailable = false
	}

	if scope == ScopeInstalled || scope == ScopeAll {
		c.installed = nil
		c.hasInstalled = false
	}
}
