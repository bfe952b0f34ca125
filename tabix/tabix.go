// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tabix

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sanogenetics/puretabix/bgzf"
	"github.com/sanogenetics/puretabix/bgzf/cache"
	"github.com/sanogenetics/puretabix/index"
	"github.com/sanogenetics/puretabix/tbi"
)

// blockCacheSize is the number of decompressed BGZF blocks a Handle
// retains, giving locality when a chunk plan revisits a small working
// set of blocks without paying for a full re-decompress.
const blockCacheSize = 4

// Handle provides random-access, line-oriented reads over a
// BGZF-compressed, Tabix-indexed data file. A Handle is single-reader:
// a query owns it for the duration of its reads, matching the
// single-threaded, blocking model the core is built for.
type Handle struct {
	idx    *tbi.Index
	data   *bgzf.Reader
	header []string
}

// Open decodes the Tabix index read from indexHandle and prepares
// dataHandle for querying. indexHandle holds a BGZF-wrapped ".tbi"
// payload; dataHandle holds the BGZF-compressed data file itself.
// Open reads dataHandle's leading skip/meta-prefixed lines once, to
// populate Header, then leaves the reader positioned for the first
// query to reseek.
func Open(dataHandle, indexHandle io.ReadSeeker) (*Handle, error) {
	gz, err := gzip.NewReader(indexHandle)
	if err != nil {
		return nil, &MalformedIndexError{Err: err}
	}
	defer gz.Close()

	idx, err := tbi.Decode(gz)
	if err != nil {
		return nil, &MalformedIndexError{Err: err}
	}

	br, err := bgzf.NewReader(dataHandle, cache.NewLRU(blockCacheSize))
	if err != nil {
		return nil, blockErr(err)
	}

	h := &Handle{idx: idx, data: br}
	if err := h.readHeader(); err != nil {
		return nil, err
	}
	return h, nil
}

// readHeader consumes the leading lines of the data file: the first
// Skip lines unconditionally, plus any further lines beginning with
// the Meta byte, mirroring the on-disk header convention every tabix
// preset shares.
func (h *Handle) readHeader() error {
	buf := bufio.NewReader(h.data)
	var lines []string
	var count int32
	for {
		line, err := buf.ReadString('\n')
		if len(line) == 0 {
			if err == io.EOF {
				break
			}
			return blockErr(err)
		}
		isMeta := h.idx.Meta != 0 && line[0] == h.idx.Meta
		if count < h.idx.Skip || isMeta {
			lines = append(lines, line)
			count++
			if err == io.EOF {
				break
			}
			continue
		}
		break
	}
	h.header = lines
	return nil
}

// Header returns the leading lines of the data file that Open
// classified as header: the Skip count plus any further
// Meta-prefixed lines, each including its trailing newline.
func (h *Handle) Header() []string {
	return h.header
}

// References returns the reference names in the order the index
// records them; RefID(name) gives each one's position in this slice.
func (h *Handle) References() []string {
	return h.idx.Names()
}

// Close releases the underlying BGZF reader, which in turn closes
// dataHandle if it implements io.Closer.
func (h *Handle) Close() error {
	return h.data.Close()
}

// Lines is a pull-based iterator over the lines of a Fetch query,
// yielding one matching line per Next call until io.EOF.
type Lines struct {
	h                  *Handle
	refName            string
	beginZero, endZero int64
	buf                *bufio.Reader
	done               bool
}

var emptyLines = &Lines{done: true}

// Next returns the next line overlapping the query, without its
// trailing newline, or io.EOF once the plan is exhausted or the early
// -stop condition (a record beginning at or past the query's end) is
// reached.
func (l *Lines) Next() ([]byte, error) {
	if l.done {
		return nil, io.EOF
	}
	for {
		line, err := l.buf.ReadBytes('\n')
		if err != nil && err != io.EOF {
			l.done = true
			return nil, blockErr(err)
		}
		if len(line) == 0 {
			l.done = true
			return nil, io.EOF
		}
		atEOF := err == io.EOF
		trimmed := bytes.TrimSuffix(line, []byte{'\n'})

		if len(trimmed) > 0 && l.h.idx.Meta != 0 && trimmed[0] == l.h.idx.Meta {
			if atEOF {
				l.done = true
				return nil, io.EOF
			}
			continue
		}

		seq, begin0, end0, perr := l.h.parseLine(trimmed)
		if perr != nil {
			l.done = true
			return nil, &LineParseError{Line: append([]byte(nil), trimmed...), Err: perr}
		}

		if begin0 >= l.endZero {
			l.done = true
			return nil, io.EOF
		}
		if atEOF {
			l.done = true
		}
		if seq == l.refName && begin0 < l.endZero && end0 > l.beginZero {
			return append([]byte(nil), trimmed...), nil
		}
		if atEOF {
			return nil, io.EOF
		}
	}
}

// Fetch returns an iterator over the lines of refName whose span
// intersects [begin, end), a 1-based-inclusive-begin, half-open-end
// interval (the common Tabix CLI convention) regardless of the
// index's own on-disk coordinate convention. An unknown reference
// name or an empty interval yields an immediately-exhausted iterator,
// not an error.
func (h *Handle) Fetch(refName string, begin, end uint64) (*Lines, error) {
	refID, ok := h.idx.RefID(refName)
	if !ok {
		return emptyLines, nil
	}

	beginZero := int64(begin) - 1
	endZero := int64(end) - 1
	if endZero <= beginZero {
		return emptyLines, nil
	}

	chunks, err := h.idx.Chunks(refID, beginZero, endZero)
	if err == index.ErrNoReference {
		return emptyLines, nil
	}
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return emptyLines, nil
	}

	cr, err := index.NewChunkReader(h.data, chunks)
	if err != nil {
		return nil, blockErr(err)
	}

	return &Lines{
		h:         h,
		refName:   refName,
		beginZero: beginZero,
		endZero:   endZero,
		buf:       bufio.NewReader(cr),
	}, nil
}

// FetchNormalized is Fetch with a "chr" prefix fallback: if refName is
// absent from the index, it retries with the prefix added or removed
// before giving up. Fetch itself never does this implicitly, so
// callers who rely on an exact-name-or-empty contract are unaffected.
func (h *Handle) FetchNormalized(refName string, begin, end uint64) (*Lines, error) {
	if _, ok := h.idx.RefID(refName); !ok {
		if alt := strings.TrimPrefix(refName, "chr"); alt != refName {
			if _, ok := h.idx.RefID(alt); ok {
				refName = alt
			}
		} else if _, ok := h.idx.RefID("chr" + refName); ok {
			refName = "chr" + refName
		}
	}
	return h.Fetch(refName, begin, end)
}

// FetchVCF calls handle with every line Fetch would yield, stopping at
// the first error handle returns. It exists so an external VCF
// tokenizer can consume raw lines without depending on the Lines
// iterator shape.
func (h *Handle) FetchVCF(refName string, begin, end uint64, handle func(line []byte) error) error {
	lines, err := h.Fetch(refName, begin, end)
	if err != nil {
		return err
	}
	for {
		line, err := lines.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handle(line); err != nil {
			return err
		}
	}
}

// FetchBytes returns the raw decompressed bytes of the chunk plan for
// [begin, end) on refName, with no line framing or filtering applied.
// It is a lower-level primitive than Fetch, for callers that want to
// pipe bytes directly into their own tokenizer.
func (h *Handle) FetchBytes(refName string, begin, end uint64) ([]byte, error) {
	refID, ok := h.idx.RefID(refName)
	if !ok {
		return nil, nil
	}
	beginZero := int64(begin) - 1
	endZero := int64(end) - 1

	chunks, err := h.idx.Chunks(refID, beginZero, endZero)
	if err == index.ErrNoReference {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	cr, err := index.NewChunkReader(h.data, chunks)
	if err != nil {
		return nil, blockErr(err)
	}
	data, err := io.ReadAll(cr)
	if err != nil {
		return nil, blockErr(err)
	}
	return data, nil
}

// parseLine extracts the reference name and zero-based half-open span
// of a data line, per the index header's column layout and coordinate
// convention.
func (h *Handle) parseLine(line []byte) (seq string, begin0, end0 int64, err error) {
	fields := bytes.Split(line, []byte{'\t'})

	nameCol := int(h.idx.NameColumn) - 1
	beginCol := int(h.idx.BeginColumn) - 1
	if nameCol < 0 || nameCol >= len(fields) || beginCol < 0 || beginCol >= len(fields) {
		return "", 0, 0, errors.Errorf("line has %d fields, want reference/begin columns %d/%d", len(fields), h.idx.NameColumn, h.idx.BeginColumn)
	}
	seq = string(fields[nameCol])

	begin, err := strconv.ParseInt(string(fields[beginCol]), 10, 64)
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "parse begin column")
	}
	if h.idx.ZeroBased {
		begin0 = begin
	} else {
		begin0 = begin - 1
	}

	if h.idx.EndColumn <= 0 {
		return seq, begin0, begin0 + 1, nil
	}
	endCol := int(h.idx.EndColumn) - 1
	if endCol >= len(fields) {
		return "", 0, 0, errors.Errorf("line has %d fields, want end column %d", len(fields), h.idx.EndColumn)
	}
	end, err := strconv.ParseInt(string(fields[endCol]), 10, 64)
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "parse end column")
	}
	return seq, begin0, end, nil
}
