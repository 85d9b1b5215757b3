// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package versions parses and compares pacman version strings.
package versions

import (
	"errors"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/mttk2004/arch-manager/internal/domain"
)

// ErrMalformedUpdateLine is returned for checkupdates lines that do not
// match "name current -> candidate".
var ErrMalformedUpdateLine = errors.New("malformed update line")

// ParseUpdateLine parses one line of checkupdates output.
func ParseUpdateLine(line string) (*domain.UpdateCandidate, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[2] != "->" {
		return nil, ErrMalformedUpdateLine
	}

	return &domain.UpdateCandidate{
		Name:      fields[0],
		Current:   fields[1],
		Candidate: fields[3],
	}, nil
}

// IsUpgrade reports whether candidate is newer than current. Pacman versions
// carry an optional epoch prefix ("2:1.0-1") and a pkgrel suffix; epochs
// dominate, then the upstream version is compared semantically with a string
// comparison as a last resort for non-semver schemes.
func IsUpgrade(current, candidate string) bool {
	curEpoch, curRest := splitEpoch(current)
	candEpoch, candRest := splitEpoch(candidate)

	if curEpoch != candEpoch {
		return candEpoch > curEpoch
	}

	curBase, curRel := splitPkgrel(curRest)
	candBase, candRel := splitPkgrel(candRest)

	cur, errCur := goversion.NewVersion(curBase)
	cand, errCand := goversion.NewVersion(candBase)

	if errCur == nil && errCand == nil {
		switch {
		case cand.GreaterThan(cur):
			return true
		case cand.LessThan(cur):
			return false
		default:
			return candRel > curRel
		}
	}

	if curBase != candBase {
		return candBase > curBase
	}

	return candRel > curRel
}

func splitEpoch(v string) (string, string) {
	if epoch, rest, found := strings.Cut(v, ":"); found {
		return epoch, rest
	}

	return "0", v
}

func splitPkgrel(v string) (string, string) {
	if base, rel, found := strings.Cut(v, "-"); found {
		return base, rel
	}

	return v, ""
}
