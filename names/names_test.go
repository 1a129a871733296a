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

package names_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biodancerwangzhi/fast-crossmap/names"
)

func TestParsePolicy(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want names.Policy
		ok   bool
	}{
		{"", names.Asis, true},
		{"asis", names.Asis, true},
		{"SHORT", names.Short, true},
		{"long", names.Long, true},
		{"bogus", names.Asis, false},
	} {
		got, ok := names.ParsePolicy(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "chr1", names.Normalize(names.Asis, "chr1"))
	assert.Equal(t, "1", names.Normalize(names.Short, "chr1"))
	assert.Equal(t, "1", names.Normalize(names.Short, "1"))
	assert.Equal(t, "chr1", names.Normalize(names.Long, "1"))
	assert.Equal(t, "chr1", names.Normalize(names.Long, "chr1"))
	assert.Equal(t, "chrM", names.Normalize(names.Long, "chrM"))
}

func TestAlternate(t *testing.T) {
	assert.Equal(t, "1", names.Alternate("chr1"))
	assert.Equal(t, "chr1", names.Alternate("1"))
	assert.Equal(t, "chrX", names.Alternate("X"))
}
