// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package arch

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mttk2004/arch-manager/internal/domain"
)

// FontSets returns the catalog of installable font sets. Each set is a
// static list of repository packages; installation goes through the regular
// package batch machinery.
func FontSets() []domain.FontSet {
	return []domain.FontSet{
		{
			Name:        "nerd",
			Description: "Patched Nerd Fonts for terminals and editors",
			Packages: []string{
				"ttf-jetbrains-mono-nerd",
				"ttf-firacode-nerd",
				"ttf-cascadia-mono-nerd",
				"ttf-hack-nerd",
				"ttf-meslo-nerd",
				"ttf-sourcecodepro-nerd",
			},
		},
		{
			Name:        "system",
			Description: "General-purpose system fonts",
			Packages: []string{
				"ttf-dejavu",
				"ttf-liberation",
				"noto-fonts",
				"cantarell-fonts",
			},
		},
		{
			Name:        "emoji",
			Description: "Color emoji and symbol fonts",
			Packages: []string{
				"noto-fonts-emoji",
				"ttf-joypixels",
			},
		},
		{
			Name:        "cjk",
			Description: "Chinese, Japanese and Korean coverage",
			Packages: []string{
				"noto-fonts-cjk",
				"adobe-source-han-sans-otc-fonts",
				"adobe-source-han-serif-otc-fonts",
			},
		},
		{
			Name:        "ms",
			Description: "Metric-compatible substitutes for Microsoft fonts",
			Packages: []string{
				"ttf-caladea",
				"ttf-carlito",
				"ttf-croscore",
			},
		},
	}
}

// FindFontSet resolves a set by name.
func FindFontSet(name string) (*domain.FontSet, bool) {
	for _, set := range FontSets() {
		if set.Name == name {
			return &set, true
		}
	}

	return nil, false
}

// FontConfig implements the FontTools port on top of fontconfig.
type FontConfig struct {
	runner domain.CommandRunner
}

// NewFontConfig creates the fontconfig adapter.
func NewFontConfig(runner domain.CommandRunner) *FontConfig {
	return &FontConfig{runner: runner}
}

// ListInstalledFamilies returns the unique installed family names, sorted
// case-insensitively.
func (f *FontConfig) ListInstalledFamilies(ctx context.Context) ([]string, error) {
	outcome, err := f.runner.Execute(ctx, "fc-list", ":", "family")
	if err != nil {
		return nil, err
	}

	if !outcome.Succeeded() {
		return nil, domain.SystemFailure("fc-list : family", outcome)
	}

	return uniqueFamilies(outcome.Stdout), nil
}

// SearchFamilies filters the installed families by a case-insensitive
// substring match.
func (f *FontConfig) SearchFamilies(ctx context.Context, pattern string) ([]string, error) {
	families, err := f.ListInstalledFamilies(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(pattern)

	var matches []string

	for _, family := range families {
		if strings.Contains(strings.ToLower(family), needle) {
			matches = append(matches, family)
		}
	}

	return matches, nil
}

// RebuildCache forces a font cache rebuild. Runs unprivileged: the per-user
// cache is what interactive applications read.
func (f *FontConfig) RebuildCache(ctx context.Context) error {
	outcome, err := f.runner.Execute(ctx, "fc-cache", "-f")
	if err != nil {
		return err
	}

	if !outcome.Succeeded() {
		return domain.SystemFailure("fc-cache -f", outcome)
	}

	return nil
}

// uniqueFamilies splits fc-list output (one comma-separated family list per
// line) into unique names.
func uniqueFamilies(output string) []string {
	seen := make(map[string]struct{})

	var families []string

	for _, line := range strings.Split(output, "\n") {
		for _, family := range strings.Split(line, ",") {
			family = strings.TrimSpace(family)
			if family == "" {
				continue
			}

			if _, ok := seen[family]; ok {
				continue
			}

			seen[family] = struct{}{}

			families = append(families, family)
		}
	}

	sortFamilies(families)

	return families
}

func sortFamilies(families []string) {
	c := collate.New(language.Und, collate.IgnoreCase)

	sort.Slice(families, func(i, j int) bool {
		return c.CompareString(families[i], families[j]) < 0
	})
}
