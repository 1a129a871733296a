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

// Package mapping implements the block-splitting, strand-flipping interval
// algebra of spec.md §4.4 (C4), governed by the compatibility-mode switch
// of §4.6 (C6).
package mapping

import (
	"sort"
	"strings"

	"github.com/biodancerwangzhi/fast-crossmap/errs"
	"github.com/biodancerwangzhi/fast-crossmap/index"
	"github.com/biodancerwangzhi/fast-crossmap/names"
)

// Strand is a genomic strand.
type Strand byte

const (
	Plus  Strand = '+'
	Minus Strand = '-'
)

// Flip returns the opposite strand.
func (s Strand) Flip() Strand {
	if s == Plus {
		return Minus
	}

	return Plus
}

// Mode is the compatibility-mode switch of spec.md §4.6.
type Mode int

const (
	// Strict reproduces legacy byte-for-byte semantics: candidate blocks
	// are emitted in chain order, with no fragmentation coalescing.
	Strict Mode = iota
	// Improved sorts candidates by (target contig, target start) and may
	// coalesce adjacent fragments whose target ranges are contiguous.
	Improved
)

// ParseMode converts a CLI-style compat-mode token into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, true
	case "improved":
		return Improved, true
	default:
		return Strict, false
	}
}

// MappedInterval is the result of a single-block mapping, per spec.md §3.
type MappedInterval struct {
	SrcContig string
	SrcStart  int64
	SrcEnd    int64

	TgtContig string
	TgtStart  int64
	TgtEnd    int64
	TgtStrand Strand
}

// Engine maps source intervals to target intervals using an Index built by
// package index. Engine is constructed once and is immutable thereafter;
// Map is safe to call concurrently from any number of goroutines.
type Engine struct {
	idx    *index.Index
	policy names.Policy
	mode   Mode
}

// New constructs a mapping Engine. policy must match the policy the Index
// was built with.
func New(idx *index.Index, policy names.Policy, mode Mode) *Engine {
	return &Engine{idx: idx, policy: policy, mode: mode}
}

// Mode returns the engine's compatibility mode.
func (e *Engine) Mode() Mode { return e.mode }

type candidate struct {
	interval MappedInterval
	chainSeq int
}

// Map returns every MappedInterval for [start, end) on contig/strand, per
// spec.md §4.4. When the returned slice is empty, reason explains why.
func (e *Engine) Map(contig string, start, end int64, strand Strand) ([]MappedInterval, errs.Reason) {
	blocks, known := e.idx.Query(contig, start, end)
	if !known {
		return nil, errs.UnknownContig
	}

	if len(blocks) == 0 {
		return nil, errs.NoOverlap
	}

	srcKey := names.Normalize(e.policy, contig)

	candidates := make([]candidate, 0, len(blocks))
	for _, b := range blocks {
		var cs, ce int64
		if start == end {
			cs, ce = start, start
		} else {
			cs = max64(start, b.SrcStart)
			ce = min64(end, b.SrcEnd)
			if cs >= ce {
				continue
			}
		}

		lo := cs - b.SrcStart
		hi := ce - b.SrcStart

		var tgtStart, tgtEnd int64
		outStrand := strand

		if Strand(b.TgtStrand) == Plus {
			tgtStart = b.TgtStart + lo
			tgtEnd = b.TgtStart + hi
		} else {
			tgtStart = b.TgtEnd - hi
			tgtEnd = b.TgtEnd - lo
			outStrand = strand.Flip()
		}

		candidates = append(candidates, candidate{
			interval: MappedInterval{
				SrcContig: srcKey,
				SrcStart:  cs,
				SrcEnd:    ce,
				TgtContig: names.Normalize(e.policy, b.TgtContig),
				TgtStart:  tgtStart,
				TgtEnd:    tgtEnd,
				TgtStrand: outStrand,
			},
			chainSeq: b.ChainSeq,
		})
	}

	if len(candidates) == 0 {
		// Blocks overlapped the broad query range but every one clipped
		// away to nothing: the interval straddles an alignment boundary
		// rather than missing the chain entirely.
		return nil, errs.SplitOverBoundaries
	}

	// Order candidates deterministically by chain-of-origin first, so the
	// mode-specific ordering below never depends on the index's internal
	// traversal order (spec.md §8 property 5).
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].chainSeq != candidates[j].chainSeq {
			return candidates[i].chainSeq < candidates[j].chainSeq
		}
		return candidates[i].interval.SrcStart < candidates[j].interval.SrcStart
	})

	results := make([]MappedInterval, len(candidates))
	for i, c := range candidates {
		results[i] = c.interval
	}

	switch e.mode {
	case Strict:
		// Legacy byte-parity order: chain order, verbatim.
		return results, ""
	default:
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].TgtContig != results[j].TgtContig {
				return results[i].TgtContig < results[j].TgtContig
			}
			return results[i].TgtStart < results[j].TgtStart
		})

		return coalesce(results), ""
	}
}

// coalesce merges adjacent mappings whose target intervals are contiguous
// on the same contig and strand. It never merges across a gap in target
// coordinates, per spec.md §4.4 and the Open Question resolution in
// DESIGN.md.
func coalesce(results []MappedInterval) []MappedInterval {
	if len(results) < 2 {
		return results
	}

	merged := make([]MappedInterval, 0, len(results))
	cur := results[0]

	for _, next := range results[1:] {
		if next.TgtContig == cur.TgtContig &&
			next.TgtStrand == cur.TgtStrand &&
			next.TgtStart == cur.TgtEnd &&
			next.SrcContig == cur.SrcContig {
			cur.SrcEnd = next.SrcEnd
			cur.TgtEnd = next.TgtEnd

			continue
		}

		merged = append(merged, cur)
		cur = next
	}

	merged = append(merged, cur)

	return merged
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
