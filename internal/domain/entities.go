// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

// SearchResult is one row of a repository search.
type SearchResult struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Repository  string `json:"repository"`
	Description string `json:"description"`
	Installed   bool   `json:"installed"`
}

// PackageInfo is the detailed record for a single package.
type PackageInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Repository    string `json:"repository"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	InstalledSize string `json:"installed_size"`
	Installed     bool   `json:"installed"`
}

// InstalledPackage is a name/version pair from the local database.
type InstalledPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// UpdateCandidate is one pending update reported by check_updates.
type UpdateCandidate struct {
	Name      string `json:"name"`
	Current   string `json:"current"`
	Candidate string `json:"candidate"`
}

// FontSet is a named group of font packages installable as a unit.
type FontSet struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Packages    []string `json:"packages"`
}

// Resolve returns the set's packages filtered to the requested names, or all
// packages when names is empty. Names outside the set are returned separately
// so callers can reject them instead of mutating arbitrary packages under a
// font action.
func (s *FontSet) Resolve(names []string) (members, unknown []string) {
	if len(names) == 0 {
		return s.Packages, nil
	}

	inSet := make(map[string]bool, len(s.Packages))
	for _, pkg := range s.Packages {
		inSet[pkg] = true
	}

	for _, name := range names {
		if inSet[name] {
			members = append(members, name)
		} else {
			unknown = append(unknown, name)
		}
	}

	return members, unknown
}
