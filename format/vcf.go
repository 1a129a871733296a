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

package format

import (
	"github.com/brentp/vcfgo"

	"github.com/biodancerwangzhi/fast-crossmap/mapping"
)

// VCFInterval extracts the (contig, start, end, strand) tuple the mapping
// engine needs from a VCF variant. POS is 1-based in VCF; the returned
// interval is half-open and 0-based, per spec.md §3.
func VCFInterval(v *vcfgo.Variant) (contig string, start, end int64, strand mapping.Strand) {
	start = int64(v.Pos) - 1
	end = start + int64(len(v.Ref))

	return v.Chromosome, start, end, mapping.Plus
}

// RefAlleleHook rewrites a lifted variant's REF allele (and, typically, its
// ALT alleles when the strand flips) against the target assembly. The core
// engine does not validate or rewrite alleles itself — spec.md §1 notes
// this only as a post-mapping hook, leaving reference-sequence access to
// the caller (e.g. a FASTA lookup via package fasta-adjacent code, or a
// remote sequence service). A nil hook leaves REF untouched.
type RefAlleleHook func(v *vcfgo.Variant, mapped mapping.MappedInterval) error

// ApplyToVariant rewrites v's position in place to the lifted coordinates
// and, if hook is non-nil, invokes the REF-allele rewrite hook.
func ApplyToVariant(v *vcfgo.Variant, mapped mapping.MappedInterval, hook RefAlleleHook) error {
	v.Chromosome = mapped.TgtContig
	v.Pos = uint64(mapped.TgtStart + 1)

	if hook == nil {
		return nil
	}

	return hook(v, mapped)
}
