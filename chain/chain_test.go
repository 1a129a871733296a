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

package chain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodancerwangzhi/fast-crossmap/chain"
	"github.com/biodancerwangzhi/fast-crossmap/errs"
)

func TestParseSinglePlusBlock(t *testing.T) {
	const data = `chain 1000 chr1 248956422 + 1000 2000 chr1 242193529 + 5000 6000 1
1000
`
	chains, err := chain.Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, chains, 1)

	c := chains[0]
	require.Len(t, c.Blocks, 1)
	b := c.Blocks[0]
	assert.Equal(t, int64(1000), b.SrcStart)
	assert.Equal(t, int64(2000), b.SrcEnd)
	assert.Equal(t, int64(5000), b.TgtStart)
	assert.Equal(t, int64(6000), b.TgtEnd)
	assert.Equal(t, byte('+'), b.TgtStrand)
}

func TestParseNegativeStrandBlock(t *testing.T) {
	// src [1000,2000) -> tgt chr2 [10000,11000), tgt size 20000, strand '-'
	const data = `chain 1000 chr1 248956422 + 1000 2000 chr2 20000 - 10000 11000 2
1000
`
	chains, err := chain.Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, chains, 1)

	b := chains[0].Blocks[0]
	assert.Equal(t, byte('-'), b.TgtStrand)
	// reflected frame origin: tgt_size - tgt_end = 20000-11000 = 9000
	// block covers [9000, 10000) in that frame, reflected back:
	// tgt_size-(t+size)..tgt_size-t = 20000-10000 .. 20000-9000 = 10000..11000
	assert.Equal(t, int64(10000), b.TgtStart)
	assert.Equal(t, int64(11000), b.TgtEnd)
}

func TestParseMultiBlockWithGap(t *testing.T) {
	const data = `chain 500 chr1 248956422 + 1000 1300 chr1 242193529 + 5000 6100 3
100	100	900
100
`
	chains, err := chain.Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, chains, 1)
	require.Len(t, chains[0].Blocks, 2)

	b0, b1 := chains[0].Blocks[0], chains[0].Blocks[1]
	assert.Equal(t, int64(1000), b0.SrcStart)
	assert.Equal(t, int64(1100), b0.SrcEnd)
	assert.Equal(t, int64(5000), b0.TgtStart)
	assert.Equal(t, int64(5100), b0.TgtEnd)

	assert.Equal(t, int64(1200), b1.SrcStart)
	assert.Equal(t, int64(1300), b1.SrcEnd)
	assert.Equal(t, int64(6000), b1.TgtStart)
	assert.Equal(t, int64(6100), b1.TgtEnd)
}

func TestParseRejectsNegativeSourceStrand(t *testing.T) {
	const data = `chain 1000 chr1 248956422 - 1000 2000 chr1 242193529 + 5000 6000 1
1000
`
	_, err := chain.Parse(strings.NewReader(data))
	require.Error(t, err)

	var fe *errs.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestParseDetectsInconsistentChain(t *testing.T) {
	const data = `chain 1000 chr1 248956422 + 1000 2000 chr1 242193529 + 5000 6000 1
900
`
	_, err := chain.Parse(strings.NewReader(data))
	require.Error(t, err)

	var ce *errs.ChainConsistencyError
	assert.ErrorAs(t, err, &ce)
}

func TestParseMultipleChainsSeparatedByBlankLines(t *testing.T) {
	const data = `chain 1000 chr1 248956422 + 0 100 chr1 242193529 + 0 100 1
100

chain 2000 chr2 198295559 + 0 200 chr2 242193529 + 0 200 2
200
`
	chains, err := chain.Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, 0, chains[0].Seq)
	assert.Equal(t, 1, chains[1].Seq)
}
