// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tbi

import (
	"github.com/sanogenetics/puretabix/bgzf"
	"github.com/sanogenetics/puretabix/binning"
	"github.com/sanogenetics/puretabix/index"
)

// Chunks returns the coalesced, minimal read plan of virtual-offset
// chunks that might contain a record overlapping the zero-based
// half-open interval [begin, end) on the named reference.
//
// It collects chunks from every bin that overlaps the interval, drops
// chunks that are known (via the linear index) to end before any
// record of interest could start, sorts what remains by Begin, and
// coalesces adjacent or overlapping chunks. An unknown reference yields
// index.ErrNoReference; this is not a query-time error elsewhere in the
// module because callers are expected to check RefID themselves first.
func (idx *Index) Chunks(refID int, begin, end int64) ([]bgzf.Chunk, error) {
	if refID < 0 || refID >= len(idx.Refs) {
		return nil, index.ErrNoReference
	}
	ref := idx.Refs[refID]

	if end <= begin {
		end = begin + 1
	}

	minOffset := linearMinOffset(ref.Intervals, begin)

	var candidates []bgzf.Chunk
	for _, bin := range binning.OverlappingBins(begin, end) {
		chunks, ok := ref.Bins[bin]
		if !ok {
			continue
		}
		for _, c := range chunks {
			if c.End.Virtual() <= minOffset.Virtual() {
				continue
			}
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	index.SortByBegin(candidates)
	return index.Adjacent(candidates), nil
}

// linearMinOffset returns the smallest virtual offset at which a record
// overlapping position begin could possibly start, per the reference's
// linear index. If begin falls beyond the linear index (no data was
// ever seen that far), it returns the zero offset: a safe, if
// unhelpfully loose, lower bound.
func linearMinOffset(intervals []bgzf.Offset, begin int64) bgzf.Offset {
	bucket := binning.LinearIndexBucket(begin)
	if bucket < 0 || bucket >= len(intervals) {
		return bgzf.Offset{}
	}
	return intervals[bucket]
}
