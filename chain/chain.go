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

// Package chain parses UCSC chain files, turning each chain's header and
// data lines directly into the AlignedBlocks the index (package index)
// indexes, per spec.md §4.2.
// https://genome.ucsc.edu/goldenPath/help/chain.html
package chain

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"

	"github.com/biodancerwangzhi/fast-crossmap/errs"
)

// AlignedBlock is a gapless sub-alignment within a chain: source and target
// span the same length. Source coordinates are always expressed on the
// forward strand of the source contig; target coordinates are always
// expressed on the forward strand of the target contig, regardless of the
// chain's target strand (spec.md §3).
type AlignedBlock struct {
	SrcContig string
	SrcStart  int64
	SrcEnd    int64

	TgtContig     string
	TgtContigSize int64
	TgtStrand     byte // '+' or '-'
	TgtStart      int64
	TgtEnd        int64

	// ChainID and ChainSeq identify the chain the block was derived from;
	// ChainSeq is the 0-based position of the chain in the file, used for
	// strict-mode chain-order tie-breaking (spec.md §4.4).
	ChainID  int64
	ChainSeq int
	Score    int64
}

// Chain is a single parsed chain header plus its derived AlignedBlocks.
type Chain struct {
	ID    int64
	Score int64
	Seq   int

	SrcName  string
	SrcSize  int64
	SrcStart int64
	SrcEnd   int64

	TgtName   string
	TgtSize   int64
	TgtStrand byte
	TgtStart  int64
	TgtEnd    int64

	Blocks []AlignedBlock
}

// LoadOptions configures Load's optional progress reporting.
type LoadOptions struct {
	// ShowProgress renders a github.com/cheggaaa/pb/v3 bar to os.Stderr
	// while chains are parsed, sized by Size.
	ShowProgress bool
	// Size is the total byte length of the (possibly compressed) input,
	// used to size the progress bar. Ignored if ShowProgress is false.
	Size int64
}

// Load parses every chain from r. r should already be decompressed (see
// package compress).
func Load(r io.Reader, opts LoadOptions) ([]Chain, error) {
	var bar *pb.ProgressBar
	if opts.ShowProgress {
		bar = pb.StartNew(int(opts.Size))
		defer bar.Finish()
		r = bar.NewProxyReader(r)
	}

	return Parse(r)
}

// Parse reads every chain from r without progress reporting.
func Parse(r io.Reader) ([]Chain, error) {
	var chains []Chain

	var cur *header
	var lineNo int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			cur = nil
			continue
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "chain"):
			h, err := parseHeader(line, lineNo, len(chains))
			if err != nil {
				return nil, err
			}
			cur = h
			continue
		}

		if cur == nil {
			return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "data line outside of a chain"}
		}

		fields := strings.Fields(line)

		switch len(fields) {
		case 1:
			size, err := parseNonNegative(fields[0])
			if err != nil {
				return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: err.Error()}
			}

			cur.addBlock(size, 0, 0)

			c, err := cur.finish()
			if err != nil {
				return nil, err
			}
			chains = append(chains, *c)
			cur = nil

		case 3:
			size, err := parseNonNegative(fields[0])
			if err != nil {
				return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: err.Error()}
			}
			dt, err := parseNonNegative(fields[1])
			if err != nil {
				return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: err.Error()}
			}
			dq, err := parseNonNegative(fields[2])
			if err != nil {
				return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: err.Error()}
			}

			cur.addBlock(size, dt, dq)

		default:
			return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: fmt.Sprintf("invalid data line: %q", line)}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &errs.IoError{Op: "reading chain file", Err: err}
	}

	if cur != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "unterminated chain (missing final single-size line)"}
	}

	return chains, nil
}

// header accumulates a chain's metadata and data lines as they're parsed.
type header struct {
	lineNo int

	c Chain

	s int64 // walking src offset from SrcStart
	t int64 // walking tgt offset: from TgtStart on '+', from TgtSize-TgtEnd (reflected frame) on '-'

	tgtSpan int64 // sum of size+dq over all data lines, used to check target-span closure
}

func parseHeader(line string, lineNo int, seq int) (*header, error) {
	fields := strings.Fields(line)
	// "chain" score tName tSize tStrand tStart tEnd qName qSize qStrand qStart qEnd id
	if len(fields) != 13 {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: fmt.Sprintf("chain header has %d fields, want 13", len(fields))}
	}

	score, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid score"}
	}

	srcSize, err := parseNonNegative(fields[3])
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid tSize: " + err.Error()}
	}
	if fields[4] != "+" {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "source strand must be '+'"}
	}
	srcStart, err := parseNonNegative(fields[5])
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid tStart: " + err.Error()}
	}
	srcEnd, err := parseNonNegative(fields[6])
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid tEnd: " + err.Error()}
	}
	if srcStart >= srcEnd {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "tStart must be < tEnd"}
	}

	tgtSize, err := parseNonNegative(fields[8])
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid qSize: " + err.Error()}
	}
	tgtStrand := fields[9]
	if tgtStrand != "+" && tgtStrand != "-" {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "target strand must be '+' or '-'"}
	}
	tgtStart, err := parseNonNegative(fields[10])
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid qStart: " + err.Error()}
	}
	tgtEnd, err := parseNonNegative(fields[11])
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid qEnd: " + err.Error()}
	}
	if tgtStart >= tgtEnd {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "qStart must be < qEnd"}
	}

	id, err := strconv.ParseInt(fields[12], 10, 64)
	if err != nil {
		return nil, &errs.FormatError{Stream: "chain", Line: lineNo, Detail: "invalid id"}
	}

	h := &header{
		lineNo: lineNo,
		c: Chain{
			ID:        id,
			Score:     score,
			Seq:       seq,
			SrcName:   fields[2],
			SrcSize:   srcSize,
			SrcStart:  srcStart,
			SrcEnd:    srcEnd,
			TgtName:   fields[7],
			TgtSize:   tgtSize,
			TgtStrand: tgtStrand[0],
			TgtStart:  tgtStart,
			TgtEnd:    tgtEnd,
		},
		s: srcStart,
	}

	// §4.2 step 1: the block-walk origin in the target frame. On '-' the
	// frame is the reverse-complement, so it starts at tgt_size - tgt_end.
	if h.c.TgtStrand == '+' {
		h.t = tgtStart
	} else {
		h.t = tgtSize - tgtEnd
	}

	return h, nil
}

// addBlock walks one data line per spec.md §4.2 step 2.
func (h *header) addBlock(size, dt, dq int64) {
	s, t := h.s, h.t

	block := AlignedBlock{
		SrcContig:     h.c.SrcName,
		SrcStart:      s,
		SrcEnd:        s + size,
		TgtContig:     h.c.TgtName,
		TgtContigSize: h.c.TgtSize,
		TgtStrand:     h.c.TgtStrand,
		ChainID:       h.c.ID,
		ChainSeq:      h.c.Seq,
		Score:         h.c.Score,
	}

	if h.c.TgtStrand == '+' {
		block.TgtStart = t
		block.TgtEnd = t + size
	} else {
		block.TgtStart = h.c.TgtSize - (t + size)
		block.TgtEnd = h.c.TgtSize - t
	}

	if size > 0 {
		h.c.Blocks = append(h.c.Blocks, block)
	}

	h.tgtSpan += size + dq
	h.s += size + dt
	h.t += size + dq
}

// finish validates block-sum closure (spec.md §4.2 step 3 / §8 property 3)
// and returns the completed Chain.
func (h *header) finish() (*Chain, error) {
	if h.s != h.c.SrcEnd {
		return nil, &errs.ChainConsistencyError{
			ChainID: h.c.ID,
			Detail:  fmt.Sprintf("source blocks sum to %d, header declares src span ending at %d", h.s, h.c.SrcEnd),
		}
	}

	if h.tgtSpan != h.c.TgtEnd-h.c.TgtStart {
		return nil, &errs.ChainConsistencyError{
			ChainID: h.c.ID,
			Detail:  fmt.Sprintf("target blocks and gaps sum to %d, header declares target span of %d", h.tgtSpan, h.c.TgtEnd-h.c.TgtStart),
		}
	}

	c := h.c

	return &c, nil
}

func parseNonNegative(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %q", s)
	}

	return v, nil
}
