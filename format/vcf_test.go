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

package format_test

import (
	"testing"

	"github.com/brentp/vcfgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodancerwangzhi/fast-crossmap/format"
	"github.com/biodancerwangzhi/fast-crossmap/mapping"
)

func TestVCFInterval(t *testing.T) {
	v := &vcfgo.Variant{
		Chromosome: "chr1",
		Pos:        1001,
		Ref:        "AC",
	}

	contig, start, end, strand := format.VCFInterval(v)
	assert.Equal(t, "chr1", contig)
	assert.Equal(t, int64(1000), start)
	assert.Equal(t, int64(1002), end)
	assert.Equal(t, mapping.Plus, strand)
}

func TestApplyToVariantRewritesPositionAndInvokesHook(t *testing.T) {
	v := &vcfgo.Variant{Chromosome: "chr1", Pos: 1001, Ref: "AC"}

	mapped := mapping.MappedInterval{TgtContig: "chr2", TgtStart: 2000, TgtEnd: 2002}

	var hookCalled bool
	err := format.ApplyToVariant(v, mapped, func(hv *vcfgo.Variant, m mapping.MappedInterval) error {
		hookCalled = true
		assert.Same(t, v, hv)
		assert.Equal(t, mapped, m)

		return nil
	})
	require.NoError(t, err)
	assert.True(t, hookCalled)

	assert.Equal(t, "chr2", v.Chromosome)
	assert.Equal(t, uint64(2001), v.Pos)
}

func TestApplyToVariantNilHook(t *testing.T) {
	v := &vcfgo.Variant{Chromosome: "chr1", Pos: 1001, Ref: "AC"}

	err := format.ApplyToVariant(v, mapping.MappedInterval{TgtContig: "chr2", TgtStart: 500}, nil)
	require.NoError(t, err)
	assert.Equal(t, "chr2", v.Chromosome)
	assert.Equal(t, uint64(501), v.Pos)
}
