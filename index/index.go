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

// Package index builds the per-source-contig searchable structure of
// AlignedBlocks that answers overlap queries, per spec.md §4.3 (C3). Each
// contig gets its own github.com/Workiva/go-datastructures/augmentedtree,
// the same interval-tree library the teacher package used for its
// per-chromosome chain tree.
package index

import (
	"fmt"
	"hash/fnv"

	"github.com/Workiva/go-datastructures/augmentedtree"

	"github.com/biodancerwangzhi/fast-crossmap/chain"
	"github.com/biodancerwangzhi/fast-crossmap/names"
)

// entry adapts an AlignedBlock to augmentedtree.Interval, keyed on the
// source range. Blocks are owned by the index and referenced directly from
// query results; they are never copied per-query.
type entry struct {
	block *chain.AlignedBlock
}

func (e *entry) LowAtDimension(uint64) int64  { return e.block.SrcStart }
func (e *entry) HighAtDimension(uint64) int64 { return e.block.SrcEnd }
func (e *entry) OverlapsAtDimension(augmentedtree.Interval, uint64) bool { return true }

func (e *entry) ID() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d;%d;%d;%s;%d", e.block.ChainID, e.block.SrcStart, e.block.SrcEnd, e.block.TgtContig, e.block.TgtStart)
	return h.Sum64()
}

// span is a zero-width-safe query interval; augmentedtree requires
// High > Low, so a point query widens by one and the caller re-clips.
type span struct {
	lo, hi int64
}

func (s *span) LowAtDimension(uint64) int64                            { return s.lo }
func (s *span) HighAtDimension(uint64) int64                           { return s.hi }
func (s *span) OverlapsAtDimension(augmentedtree.Interval, uint64) bool { return true }
func (s *span) ID() uint64                                             { return 0 }

// Index is the immutable, read-only-after-construction interval index over
// a chain file's AlignedBlocks, grouped by source contig. Index is safe for
// concurrent use by many goroutines without locking: construction fully
// completes before any query is issued, and augmentedtree.Tree's Query
// method performs no mutation.
type Index struct {
	policy names.Policy
	trees  map[string]augmentedtree.Tree
	counts map[string]int
}

// Build constructs an Index from every chain's AlignedBlocks.
func Build(chains []chain.Chain, policy names.Policy) *Index {
	idx := &Index{
		policy: policy,
		trees:  make(map[string]augmentedtree.Tree),
		counts: make(map[string]int),
	}

	for ci := range chains {
		c := &chains[ci]
		for bi := range c.Blocks {
			b := &c.Blocks[bi]

			key := names.Normalize(policy, b.SrcContig)

			tree, ok := idx.trees[key]
			if !ok {
				tree = augmentedtree.New(1)
				idx.trees[key] = tree
			}

			tree.Add(&entry{block: b})
			idx.counts[key]++
		}
	}

	return idx
}

// Len returns the number of indexed blocks for a (normalized) contig, or 0
// if the contig is unknown.
func (idx *Index) Len(contig string) int {
	key, ok := idx.resolve(contig)
	if !ok {
		return 0
	}

	return idx.counts[key]
}

// resolve normalizes contig per the chromid policy and, failing a direct
// hit, retries under the alternate chr-prefix form (spec.md §4.3).
func (idx *Index) resolve(contig string) (string, bool) {
	key := names.Normalize(idx.policy, contig)
	if _, ok := idx.trees[key]; ok {
		return key, true
	}

	alt := names.Alternate(key)
	if _, ok := idx.trees[alt]; ok {
		return alt, true
	}

	return "", false
}

// Query returns every AlignedBlock on contig whose source range overlaps
// [qs, qe). A zero-width query ([qs,qe) with qs==qe) matches blocks that
// cover the point qs, per spec.md §4.4's zero-width-interval rule.
func (idx *Index) Query(contig string, qs, qe int64) ([]*chain.AlignedBlock, bool) {
	key, ok := idx.resolve(contig)
	if !ok {
		return nil, false
	}

	tree := idx.trees[key]

	hi := qe
	if hi <= qs {
		hi = qs + 1
	}

	results := tree.Query(&span{lo: qs, hi: hi})

	blocks := make([]*chain.AlignedBlock, 0, len(results))
	for _, iv := range results {
		b := iv.(*entry).block

		if qs == qe {
			if qs < b.SrcStart || qs >= b.SrcEnd {
				continue
			}
		} else if qs >= b.SrcEnd || qe <= b.SrcStart {
			continue
		}

		blocks = append(blocks, b)
	}

	return blocks, true
}
