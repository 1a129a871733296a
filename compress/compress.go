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

package compress

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

type autoCompressingWriteCloser struct {
	io.WriteCloser
}

// Guess the compression algorithm based on the file extension.
// If none is found, use gzip.
func Compress(name string, w io.Writer) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".lz4"):
		lz4Writer := lz4.NewWriter(w)

		return &autoCompressingWriteCloser{
			WriteCloser: lz4Writer,
		}, nil
	case strings.HasSuffix(name, ".xz"):
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, err
		}

		return &autoCompressingWriteCloser{
			WriteCloser: xzWriter,
		}, nil
	case strings.HasSuffix(name, ".zst"):
		zstdWriter, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}

		return &autoCompressingWriteCloser{
			WriteCloser: zstdWriter,
		}, nil
	default:
		gzWriter := gzip.NewWriter(w)

		return &autoCompressingWriteCloser{
			WriteCloser: gzWriter,
		}, nil
	}
}

// compressedSuffixes are the extensions CreateSink treats as a request for
// compression. Unlike Compress (which always picks some codec, defaulting
// to gzip), a liftover output file with no recognized suffix is meant to be
// read back as plain text (spec.md §6 names `<out>`/`<out>.unmap` with no
// implied codec), so CreateSink only calls Compress for one of these.
var compressedSuffixes = []string{".gz", ".lz4", ".xz", ".zst"}

// CreateSink creates the file named path and, if its extension is one of
// compressedSuffixes, wraps it with Compress; otherwise the file is
// returned as plain text. This is the write-side counterpart of OpenSource
// and is how chain/record sinks decide whether to compress at all, not just
// which codec to use.
func CreateSink(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	for _, sfx := range compressedSuffixes {
		if !strings.HasSuffix(path, sfx) {
			continue
		}

		w, err := Compress(path, f)
		if err != nil {
			f.Close()
			return nil, err
		}

		return &sinkCloser{Writer: w, codec: w, file: f}, nil
	}

	return f, nil
}

// sinkCloser closes the codec writer before the underlying file, so a
// buffered/blocked codec (gzip, xz, zstd) flushes its trailer before the
// file descriptor goes away.
type sinkCloser struct {
	io.Writer
	codec io.Closer
	file  io.Closer
}

func (s *sinkCloser) Close() error {
	if err := s.codec.Close(); err != nil {
		return err
	}

	return s.file.Close()
}
