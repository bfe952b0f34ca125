// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"io"

	"github.com/pkg/errors"
)

// Reader provides random access, virtual-offset-addressed reading of a
// BGZF stream. It holds at most one decompressed block in memory at a
// time (plus whatever a Cache retains) and is not safe for concurrent
// use: a query owns a Reader for the duration of its reads, per the
// single-threaded, single-reader model.
type Reader struct {
	r     io.ReadSeeker
	cache Cache

	base     int64  // compressed offset of the current block
	data     []byte // current block's decompressed payload
	pos      int    // read cursor into data (the uoffset)
	length   int    // current block's total on-disk length
	nextBase int64  // compressed offset of the following member

	chunk Chunk
	err   error
}

// NewReader returns a Reader for r, positioned at the start of the
// stream. cache may be nil, in which case no block is retained once it
// has been consumed.
func NewReader(r io.ReadSeeker, cache Cache) (*Reader, error) {
	br := &Reader{r: r, cache: cache}
	if err := br.loadBlockAt(0); err != nil {
		if err == io.EOF {
			// Empty underlying file: leave br with no block loaded;
			// the first Read will report io.EOF.
			br.data = nil
			return br, nil
		}
		return nil, err
	}
	return br, nil
}

// loadBlockAt reads (or fetches from cache) the block beginning at the
// given compressed offset and makes it current.
func (r *Reader) loadBlockAt(offset int64) error {
	if r.cache != nil {
		if blk, ok := r.cache.Get(offset); ok {
			r.base = offset
			r.data = blk.Data
			r.length = blk.Length
			r.pos = 0
			r.nextBase = offset + int64(blk.Length)
			return nil
		}
	}
	if _, err := r.r.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrap(err, "bgzf: seek to block")
	}
	data, length, err := readMember(r.r)
	if err != nil {
		return err
	}
	r.base = offset
	r.data = data
	r.length = length
	r.pos = 0
	r.nextBase = offset + int64(length)
	if r.cache != nil {
		r.cache.Put(Block{Offset: offset, Data: data, Length: length})
	}
	return nil
}

// Seek repositions the Reader at the given virtual offset, loading the
// target block if it is not already current.
func (r *Reader) Seek(off Offset) error {
	r.err = nil
	if off.File != r.base || r.data == nil {
		if err := r.loadBlockAt(off.File); err != nil {
			r.err = err
			return err
		}
	}
	if int(off.Block) > len(r.data) {
		err := errors.Errorf("bgzf: block offset %d exceeds decompressed length %d at %d", off.Block, len(r.data), off.File)
		r.err = err
		return err
	}
	r.pos = int(off.Block)
	r.chunk = Chunk{Begin: off, End: off}
	return nil
}

// Tell returns the virtual offset of the next byte Read will return.
func (r *Reader) Tell() Offset {
	return Offset{File: r.base, Block: uint16(r.pos)}
}

// BlockLen returns the decompressed length of the current block.
func (r *Reader) BlockLen() int {
	return len(r.data)
}

// LastChunk returns the virtual-offset span consumed by the most
// recent Read call.
func (r *Reader) LastChunk() Chunk {
	return r.chunk
}

// Read implements io.Reader over the BGZF virtual stream, transparently
// advancing across member boundaries.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.chunk.Begin = r.Tell()
	var n int
	for n < len(p) {
		if r.pos >= len(r.data) {
			if err := r.loadBlockAt(r.nextBase); err != nil {
				r.err = err
				break
			}
			if isEOFBlock(r.data) {
				r.err = io.EOF
				break
			}
		}
		c := copy(p[n:], r.data[r.pos:])
		r.pos += c
		n += c
	}
	r.chunk.End = r.Tell()
	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

// Close releases the underlying reader if it implements io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
