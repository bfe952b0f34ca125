// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"io"

	"github.com/sanogenetics/puretabix/bgzf"
)

// ChunkReader wraps a *bgzf.Reader to read only the bytes covered by an
// ordered, non-overlapping plan of chunks, skipping the gaps between
// them. It never returns a byte past the End of the chunk it came
// from: tabix chunk boundaries are themselves recorded at record
// boundaries, so a plan built from a well-formed index never needs to
// cross one mid-record.
type ChunkReader struct {
	r      *bgzf.Reader
	chunks []bgzf.Chunk
}

// NewChunkReader returns a ChunkReader reading br through plan. plan
// must be sorted by Begin and free of overlaps, as produced by a chunk
// planner.
func NewChunkReader(br *bgzf.Reader, plan []bgzf.Chunk) (*ChunkReader, error) {
	cr := &ChunkReader{r: br, chunks: plan}
	if len(plan) != 0 {
		if err := br.Seek(plan[0].Begin); err != nil {
			return nil, err
		}
	}
	return cr, nil
}

// Read implements io.Reader, transparently seeking to the next chunk in
// the plan whenever the current one is exhausted.
func (cr *ChunkReader) Read(p []byte) (int, error) {
	for {
		if len(cr.chunks) == 0 {
			return 0, io.EOF
		}
		end := cr.chunks[0].End
		pos := cr.r.Tell()
		if !pos.Less(end) {
			cr.chunks = cr.chunks[1:]
			if len(cr.chunks) == 0 {
				return 0, io.EOF
			}
			if err := cr.r.Seek(cr.chunks[0].Begin); err != nil {
				return 0, err
			}
			continue
		}

		limit := len(p)
		if blockRemaining := cr.r.BlockLen() - int(pos.Block); blockRemaining < limit {
			limit = blockRemaining
		}
		if pos.File == end.File {
			if sameBlockRemaining := int(end.Block) - int(pos.Block); sameBlockRemaining < limit {
				limit = sameBlockRemaining
			}
		}
		if limit <= 0 {
			if len(p) == 0 {
				return 0, nil
			}
			// The current block is exhausted but we have not yet
			// crossed the chunk end; ask the underlying Reader for a
			// single byte so it loads the following block itself.
			limit = 1
		}

		n, err := cr.r.Read(p[:limit])
		if n > 0 {
			// A one-byte read that crossed into the block starting at
			// End returned a byte outside the chunk; drop it so the next
			// pass moves on to the following chunk.
			if next := cr.r.Tell(); next.File != pos.File && !(bgzf.Offset{File: next.File}).Less(end) {
				continue
			}
			return n, err
		}
		if err != nil {
			return 0, err
		}
	}
}

// Close releases the underlying bgzf.Reader.
func (cr *ChunkReader) Close() error {
	return cr.r.Close()
}
