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

// Package format implements the minimal line shapes the liftover engine
// drives (spec.md §6 and the "Dynamic dispatch over formats" design note):
// the BED core record shape parsed and rewritten in full, plus thin VCF and
// SAM/BAM adapters that extract a (contig, start, end, strand) tuple and
// rewrite it after mapping, leaving full parsing of those richer formats to
// their own codecs (github.com/brentp/vcfgo, github.com/biogo/hts).
package format

import (
	"strconv"
	"strings"

	"github.com/biodancerwangzhi/fast-crossmap/errs"
	"github.com/biodancerwangzhi/fast-crossmap/mapping"
)

// IsPassThrough reports whether line is a comment or track/browser header
// that spec.md §6 requires to be passed through to the mapped sink
// verbatim, in input order, ahead of any data record.
func IsPassThrough(line string) bool {
	t := strings.TrimSpace(line)

	return t == "" || strings.HasPrefix(t, "#") || strings.HasPrefix(t, "track") || strings.HasPrefix(t, "browser")
}

// Record is a single parsed BED data line. Fields beyond contig/start/end
// are carried in Fields verbatim and substituted back in on output.
type Record struct {
	Contig string
	Start  int64
	End    int64
	Strand mapping.Strand

	Fields []string // the full split line; Fields[0:3] mirror Contig/Start/End
	Line   string    // original raw line, used for unmapped output
}

// ParseBED parses a single BED data line (spec.md §6): tab- or
// whitespace-delimited, contig/start/end in the first three fields, an
// optional strand in field 6.
func ParseBED(line string, lineNo int) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, &errs.FormatError{Stream: "records", Line: lineNo, Detail: "fewer than 3 fields"}
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || start < 0 {
		return nil, &errs.FormatError{Stream: "records", Line: lineNo, Detail: "invalid start"}
	}

	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || end < start {
		return nil, &errs.FormatError{Stream: "records", Line: lineNo, Detail: "invalid end"}
	}

	strand := mapping.Plus
	if len(fields) >= 6 && (fields[5] == "+" || fields[5] == "-") {
		strand = mapping.Strand(fields[5][0])
	}

	return &Record{
		Contig: fields[0],
		Start:  start,
		End:    end,
		Strand: strand,
		Fields: fields,
		Line:   line,
	}, nil
}

// Mapped renders one mapped fragment, substituting coordinates (and strand,
// if field 6 was present) into the original field layout.
func (r *Record) Mapped(m mapping.MappedInterval) string {
	out := make([]string, len(r.Fields))
	copy(out, r.Fields)

	out[0] = m.TgtContig
	out[1] = strconv.FormatInt(m.TgtStart, 10)
	out[2] = strconv.FormatInt(m.TgtEnd, 10)

	if len(out) >= 6 && (out[5] == "+" || out[5] == "-") {
		out[5] = string(m.TgtStrand)
	}

	return strings.Join(out, "\t")
}

// Unmapped renders the companion-sink line: the original line, a tab, and
// the failure reason token (spec.md §6).
func (r *Record) Unmapped(reason errs.Reason) string {
	return r.Line + "\t" + string(reason)
}
