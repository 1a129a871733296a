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

// Package pipeline drives records from a reader through the mapping engine
// and into a mapped/unmapped pair of sinks, per spec.md §4.5 (C5): one
// reader, N workers, one reordering writer, with bounded queues as the only
// backpressure mechanism (spec.md §5).
package pipeline

import (
	"bufio"
	"bytes"
	"container/heap"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/biodancerwangzhi/fast-crossmap/errs"
	"github.com/biodancerwangzhi/fast-crossmap/format"
	"github.com/biodancerwangzhi/fast-crossmap/mapping"
)

// defaultBatchSize bounds per-worker buffering: steady-state memory is
// O(workers * batch) for the job/result queues (spec.md §5).
const defaultBatchSize = 256

// Options configures a pipeline run.
type Options struct {
	// Threads selects the concurrency model: 0 uses all available
	// hardware threads, 1 takes the single-threaded fast path that
	// bypasses the queues entirely, >=2 uses an N-worker pool.
	Threads int
	// BatchSize tunes queue capacity; <=0 uses defaultBatchSize.
	BatchSize int
	// ShowProgress renders a github.com/cheggaaa/pb/v3 bar of records
	// written to the mapped sink.
	ShowProgress bool
	Logger       *slog.Logger
}

// Stats summarizes a completed run.
type Stats struct {
	Mapped   int64
	Unmapped int64
}

// Run streams BED-shaped records from r through engine, writing mapped
// fragments to mappedW and unmapped companion lines to unmappedW. Input
// record order is preserved independently on each sink (spec.md §5).
func Run(ctx context.Context, engine *mapping.Engine, r io.Reader, mappedW, unmappedW io.Writer, opts Options) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	threads := opts.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	mw := bufio.NewWriterSize(mappedW, 1<<20)
	uw := bufio.NewWriterSize(unmappedW, 1<<20)

	var bar *pb.ProgressBar
	if opts.ShowProgress {
		bar = pb.New(0)
		bar.Start()
		defer bar.Finish()
	}

	var stats Stats
	var err error

	if threads == 1 {
		stats, err = runSingleThreaded(ctx, engine, r, mw, uw, bar)
	} else {
		stats, err = runPooled(ctx, engine, r, mw, uw, threads, batch, bar)
	}

	if ferr := mw.Flush(); err == nil {
		err = ferr
	}
	if ferr := uw.Flush(); err == nil {
		err = ferr
	}

	if err != nil {
		logger.Error("pipeline failed", "error", err)
		return stats, &errs.PipelineCancelled{Err: err}
	}

	logger.Info("pipeline finished", "mapped", stats.Mapped, "unmapped", stats.Unmapped)

	return stats, nil
}

// lineJob is one line read from the input, tagged with its sequence number
// for output-order restoration.
type lineJob struct {
	seq         uint64
	lineNo      int
	raw         string
	passThrough bool
}

// lineResult is the outcome of mapping a single lineJob.
type lineResult struct {
	seq          uint64
	mappedLines  []string
	unmappedLine string
}

func processJob(engine *mapping.Engine, job lineJob) (lineResult, error) {
	if job.passThrough {
		return lineResult{seq: job.seq, mappedLines: []string{job.raw}}, nil
	}

	rec, err := format.ParseBED(job.raw, job.lineNo)
	if err != nil {
		return lineResult{}, err
	}

	mapped, reason := engine.Map(rec.Contig, rec.Start, rec.End, rec.Strand)
	if len(mapped) == 0 {
		return lineResult{seq: job.seq, unmappedLine: rec.Unmapped(reason)}, nil
	}

	lines := make([]string, len(mapped))
	for i, m := range mapped {
		lines[i] = rec.Mapped(m)
	}

	return lineResult{seq: job.seq, mappedLines: lines}, nil
}

// scanLinesKeepCR splits on '\n' but, unlike bufio.ScanLines, does not trim
// a trailing '\r', per spec.md §4.1. Pass-through and unmapped lines are
// written back with the '\r'; mapped BED lines are rebuilt from
// format.ParseBED's whitespace-split fields and do not keep it.
func scanLinesKeepCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLinesKeepCR)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	return scanner
}

func writeResult(mw, uw *bufio.Writer, res lineResult, stats *Stats, bar *pb.ProgressBar) error {
	for _, line := range res.mappedLines {
		if _, err := fmt.Fprintln(mw, line); err != nil {
			return &errs.IoError{Op: "writing mapped sink", Err: err}
		}
		stats.Mapped++
		if bar != nil {
			bar.Increment()
		}
	}

	if res.unmappedLine != "" {
		if _, err := fmt.Fprintln(uw, res.unmappedLine); err != nil {
			return &errs.IoError{Op: "writing unmapped sink", Err: err}
		}
		stats.Unmapped++
	}

	return nil
}

// runSingleThreaded is the t=1 fast path: no queues, no reorder buffer,
// minimum latency (spec.md §4.5).
func runSingleThreaded(ctx context.Context, engine *mapping.Engine, r io.Reader, mw, uw *bufio.Writer, bar *pb.ProgressBar) (Stats, error) {
	var stats Stats

	scanner := newScanner(r)
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		lineNo++
		raw := scanner.Text()

		res, err := processJob(engine, lineJob{lineNo: lineNo, raw: raw, passThrough: format.IsPassThrough(raw)})
		if err != nil {
			return stats, err
		}

		if err := writeResult(mw, uw, res, &stats, bar); err != nil {
			return stats, err
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, &errs.IoError{Op: "reading records", Err: err}
	}

	return stats, nil
}

// runPooled is the t>=2 path: one reader goroutine, `threads` workers, and
// a reordering writer fed through bounded channels (spec.md §4.5, §5).
func runPooled(ctx context.Context, engine *mapping.Engine, r io.Reader, mw, uw *bufio.Writer, threads, batch int, bar *pb.ProgressBar) (Stats, error) {
	internalCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan lineJob, threads*batch)
	results := make(chan lineResult, threads*batch)

	var once sync.Once
	var mu sync.Mutex
	var firstErr error
	fail := func(err error) {
		once.Do(func() {
			mu.Lock()
			firstErr = err
			mu.Unlock()
			cancel()
		})
	}

	// Reader.
	go func() {
		defer close(jobs)

		scanner := newScanner(r)
		lineNo := 0
		var seq uint64

		for scanner.Scan() {
			lineNo++
			raw := scanner.Text()
			job := lineJob{seq: seq, lineNo: lineNo, raw: raw, passThrough: format.IsPassThrough(raw)}
			seq++

			select {
			case jobs <- job:
			case <-internalCtx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			fail(&errs.IoError{Op: "reading records", Err: err})
		}
	}()

	// Workers.
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range jobs {
				res, err := processJob(engine, job)
				if err != nil {
					fail(err)
					return
				}

				select {
				case results <- res:
				case <-internalCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Writer: reorders by sequence number through a min-heap, per
	// spec.md §5's "minimum-heap of pending records keyed by sequence
	// number" ordering guarantee.
	stats, werr := reorderAndWrite(results, mw, uw, bar)
	if werr != nil {
		fail(werr)
	}

	mu.Lock()
	err := firstErr
	mu.Unlock()

	return stats, err
}

// pendingHeap orders buffered lineResults by sequence number.
type pendingHeap []lineResult

func (h pendingHeap) Len() int            { return len(h) }
func (h pendingHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h pendingHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pendingHeap) Push(x interface{}) { *h = append(*h, x.(lineResult)) }
func (h *pendingHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

func reorderAndWrite(results <-chan lineResult, mw, uw *bufio.Writer, bar *pb.ProgressBar) (Stats, error) {
	var stats Stats

	var h pendingHeap
	heap.Init(&h)

	var next uint64

	for res := range results {
		heap.Push(&h, res)

		for h.Len() > 0 && h[0].seq == next {
			item := heap.Pop(&h).(lineResult)

			if err := writeResult(mw, uw, item, &stats, bar); err != nil {
				return stats, err
			}

			next++
		}
	}

	return stats, nil
}
