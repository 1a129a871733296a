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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodancerwangzhi/fast-crossmap/errs"
	"github.com/biodancerwangzhi/fast-crossmap/format"
	"github.com/biodancerwangzhi/fast-crossmap/mapping"
)

func TestIsPassThrough(t *testing.T) {
	assert.True(t, format.IsPassThrough("# a comment"))
	assert.True(t, format.IsPassThrough("track name=foo"))
	assert.True(t, format.IsPassThrough("browser position chr1:1-100"))
	assert.True(t, format.IsPassThrough(""))
	assert.False(t, format.IsPassThrough("chr1\t100\t200"))
}

func TestParseBEDDefaultsStrand(t *testing.T) {
	r, err := format.ParseBED("chr1\t100\t200\tname\t0", 1)
	require.NoError(t, err)
	assert.Equal(t, mapping.Plus, r.Strand)
}

func TestParseBEDReadsStrandField(t *testing.T) {
	r, err := format.ParseBED("chr1\t100\t200\tname\t0\t-", 1)
	require.NoError(t, err)
	assert.Equal(t, mapping.Minus, r.Strand)
}

func TestParseBEDRejectsShortLines(t *testing.T) {
	_, err := format.ParseBED("chr1\t100", 1)
	require.Error(t, err)

	var fe *errs.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestRecordMappedSubstitutesCoordinatesAndStrand(t *testing.T) {
	r, err := format.ParseBED("chr1\t100\t200\tname\t0\t+", 1)
	require.NoError(t, err)

	line := r.Mapped(mapping.MappedInterval{
		TgtContig: "chr2",
		TgtStart:  900,
		TgtEnd:    1000,
		TgtStrand: mapping.Minus,
	})

	assert.Equal(t, "chr2\t900\t1000\tname\t0\t-", line)
}

func TestRecordUnmappedAppendsReason(t *testing.T) {
	r, err := format.ParseBED("chr1\t100\t200", 1)
	require.NoError(t, err)

	assert.Equal(t, "chr1\t100\t200\tUnknownContig", r.Unmapped(errs.UnknownContig))
}
