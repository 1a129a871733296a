/* SPDX-License-Identifier: AGPL-3.0-or-later
 *
 * fast-crossmap - A genome coordinate liftover engine for Go.
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package names implements the chromid contig-naming policy: bridging
// "chr1"-style and "1"-style contig names between a chain file and the
// records being lifted.
package names

import "strings"

// Policy selects how contig names are normalized for index lookups and
// output, per spec.md §4.3.
type Policy int

const (
	// Asis leaves contig names untouched.
	Asis Policy = iota
	// Short strips a leading "chr" (case-insensitive).
	Short
	// Long prepends "chr" if not already present.
	Long
)

// ParsePolicy converts a CLI-style policy token into a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToLower(s) {
	case "", "asis":
		return Asis, true
	case "short":
		return Short, true
	case "long":
		return Long, true
	default:
		return Asis, false
	}
}

// Normalize applies the policy to a contig name.
func Normalize(policy Policy, contig string) string {
	switch policy {
	case Short:
		return stripChr(contig)
	case Long:
		return addChr(contig)
	default:
		return contig
	}
}

// Alternate returns the other naming form of a contig name, so callers can
// retry a lookup that failed under the raw spelling. spec.md §4.3 requires
// index lookups to try the raw name first, then this alternative.
func Alternate(contig string) string {
	if hasChrPrefix(contig) {
		return stripChr(contig)
	}

	return addChr(contig)
}

func hasChrPrefix(contig string) bool {
	return len(contig) > 3 && strings.EqualFold(contig[:3], "chr")
}

func stripChr(contig string) string {
	if hasChrPrefix(contig) {
		return contig[3:]
	}

	return contig
}

func addChr(contig string) string {
	if hasChrPrefix(contig) {
		return contig
	}

	return "chr" + contig
}
