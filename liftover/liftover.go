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

// Package liftover wires the chain parser, interval index, mapping engine
// and record pipeline into the single entry point a CLI collaborator
// drives, per spec.md §6's external interface.
package liftover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/biodancerwangzhi/fast-crossmap/chain"
	"github.com/biodancerwangzhi/fast-crossmap/compress"
	"github.com/biodancerwangzhi/fast-crossmap/errs"
	"github.com/biodancerwangzhi/fast-crossmap/index"
	"github.com/biodancerwangzhi/fast-crossmap/mapping"
	"github.com/biodancerwangzhi/fast-crossmap/names"
	"github.com/biodancerwangzhi/fast-crossmap/pipeline"
)

// asDecompressError classifies an error from compress.OpenSource: a
// *compress.HeaderError means the magic bytes matched a codec but its
// header was rejected, a format problem with stream, not an I/O one;
// anything else (the file couldn't be opened, a read failed) is IoError.
func asDecompressError(stream, op string, err error) error {
	var headerErr *compress.HeaderError
	if errors.As(err, &headerErr) {
		return &errs.FormatError{Stream: stream, Line: 0, Detail: headerErr.Error()}
	}

	return &errs.IoError{Op: op, Err: err}
}

// Config are the constructor parameters of spec.md §6's CLI contract.
type Config struct {
	ChainPath     string
	Threads       int
	CompatMode    string // "strict" | "improved"
	ChromidPolicy string // "asis" | "short" | "long"

	// NoCompAllele disables the REF-allele rewrite hook for VCF workflows
	// (spec.md §6's "optional per-format flags" example). fast-crossmap's
	// core never rewrites alleles itself regardless of this flag — see
	// format.RefAlleleHook — but a CLI collaborator wiring a hook in
	// reads this to decide whether to attach one.
	NoCompAllele bool

	ShowProgress bool
	Logger       *slog.Logger
}

// Engine is a constructed, immutable liftover engine: a chain file loaded,
// indexed, and bound to a mapping mode and chromid policy. Engine is safe
// for concurrent use; Lift may be called from multiple goroutines.
type Engine struct {
	mapper *mapping.Engine
	cfg    Config
	logger *slog.Logger
}

// New loads and indexes the chain file named by cfg.ChainPath and returns a
// ready-to-use Engine. This is the only place the core reads the chain
// file; every subsequent Lift call reuses the in-memory index.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mode, ok := mapping.ParseMode(cfg.CompatMode)
	if !ok {
		return nil, &errs.FormatError{Stream: "config", Line: 0, Detail: fmt.Sprintf("unknown compat_mode %q", cfg.CompatMode)}
	}

	policy, ok := names.ParsePolicy(cfg.ChromidPolicy)
	if !ok {
		return nil, &errs.FormatError{Stream: "config", Line: 0, Detail: fmt.Sprintf("unknown chromid_policy %q", cfg.ChromidPolicy)}
	}

	dec, size, err := compress.OpenSource(cfg.ChainPath)
	if err != nil {
		return nil, asDecompressError("chain", "opening chain file", err)
	}
	defer dec.Close()

	logger.Info("loading chain file", "path", cfg.ChainPath, "compat_mode", mode, "chromid_policy", policy)

	chains, err := chain.Load(dec, chain.LoadOptions{ShowProgress: cfg.ShowProgress, Size: size})
	if err != nil {
		return nil, err
	}

	idx := index.Build(chains, policy)

	logger.Info("chain file indexed", "chains", len(chains))

	return &Engine{
		mapper: mapping.New(idx, policy, mode),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Mapper exposes the underlying mapping engine for format adapters (VCF,
// SAM/BAM) that drive coordinate extraction and rewriting themselves
// instead of going through Lift's BED-shaped pipeline.
func (e *Engine) Mapper() *mapping.Engine { return e.mapper }

// Lift streams BED-shaped records from inPath to <outPath> (mapped) and
// <outPath>.unmap (unmapped), per spec.md §6's output contract. Both
// streams are compressed/decompressed per package compress's suffix and
// magic-byte conventions.
func (e *Engine) Lift(ctx context.Context, inPath, outPath string) (pipeline.Stats, error) {
	src, _, err := compress.OpenSource(inPath)
	if err != nil {
		return pipeline.Stats{}, asDecompressError("records", "opening input", err)
	}
	defer src.Close()

	mappedW, err := compress.CreateSink(outPath)
	if err != nil {
		return pipeline.Stats{}, &errs.IoError{Op: "creating mapped output", Err: err}
	}

	unmappedW, err := compress.CreateSink(outPath + ".unmap")
	if err != nil {
		mappedW.Close()
		return pipeline.Stats{}, &errs.IoError{Op: "creating unmapped output", Err: err}
	}

	stats, runErr := pipeline.Run(ctx, e.mapper, src, io.Writer(mappedW), io.Writer(unmappedW), pipeline.Options{
		Threads:      e.cfg.Threads,
		ShowProgress: e.cfg.ShowProgress,
		Logger:       e.logger,
	})

	closeMappedErr := mappedW.Close()
	closeUnmappedErr := unmappedW.Close()

	if runErr != nil {
		return stats, runErr
	}
	if closeMappedErr != nil {
		return stats, &errs.IoError{Op: "closing mapped output", Err: closeMappedErr}
	}
	if closeUnmappedErr != nil {
		return stats, &errs.IoError{Op: "closing unmapped output", Err: closeUnmappedErr}
	}

	return stats, nil
}
