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
	"github.com/biogo/hts/sam"

	"github.com/biodancerwangzhi/fast-crossmap/mapping"
)

// SAMInterval extracts the (contig, start, end, strand) tuple the mapping
// engine needs from an aligned SAM/BAM record. fast-crossmap never reads or
// writes the BAM/SAM/CRAM bytes itself — per spec.md §1 that codec is an
// external collaborator — this only drives its coordinate fields through
// the same mapping engine every other format uses.
func SAMInterval(r *sam.Record) (contig string, start, end int64, strand mapping.Strand) {
	strand = mapping.Plus
	if r.Flags&sam.Reverse != 0 {
		strand = mapping.Minus
	}

	return r.Ref.Name(), int64(r.Pos), int64(r.Pos + r.Len()), strand
}

// ApplyToRecord rewrites r's reference and position in place to the lifted
// coordinates. The caller resolves mapped.TgtContig to a *sam.Reference in
// the target header (e.g. via (*sam.Header).Name2ID) before calling this.
func ApplyToRecord(r *sam.Record, ref *sam.Reference, mapped mapping.MappedInterval) {
	r.Ref = ref
	r.Pos = int(mapped.TgtStart)

	if mapped.TgtStrand == mapping.Minus {
		r.Flags |= sam.Reverse
	} else {
		r.Flags &^= sam.Reverse
	}
}
