// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"golang.org/x/exp/slices"

	"github.com/sanogenetics/puretabix/bgzf"
)

// MergeStrategy coalesces a sorted-by-begin set of chunks.
type MergeStrategy func([]bgzf.Chunk) []bgzf.Chunk

var (
	// Identity leaves the chunk list unaltered.
	Identity MergeStrategy = identity

	// Adjacent merges chunks whose virtual-offset ranges touch or
	// overlap, the coalescing step of a chunk planner's output.
	Adjacent MergeStrategy = adjacent

	// Squash merges every chunk into a single spanning chunk.
	Squash MergeStrategy = squash
)

func identity(chunks []bgzf.Chunk) []bgzf.Chunk { return chunks }

// adjacent merges chunk[i] into chunk[i+1] whenever
// chunk[i].End >= chunk[i+1].Begin, repeating until stable. chunks must
// already be sorted by Begin.
func adjacent(chunks []bgzf.Chunk) []bgzf.Chunk {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]bgzf.Chunk, 0, len(chunks))
	out = append(out, chunks[0])
	for _, c := range chunks[1:] {
		last := &out[len(out)-1]
		if last.End.Virtual() >= c.Begin.Virtual() {
			if c.End.Virtual() > last.End.Virtual() {
				last.End = c.End
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func squash(chunks []bgzf.Chunk) []bgzf.Chunk {
	if len(chunks) == 0 {
		return nil
	}
	left := chunks[0].Begin
	right := chunks[0].End
	for _, c := range chunks[1:] {
		if c.End.Virtual() > right.Virtual() {
			right = c.End
		}
	}
	return []bgzf.Chunk{{Begin: left, End: right}}
}

// SortByBegin sorts chunks in place by ascending Begin virtual offset,
// the step that precedes coalescing in a chunk planner.
func SortByBegin(chunks []bgzf.Chunk) {
	slices.SortFunc(chunks, func(a, b bgzf.Chunk) int {
		switch {
		case a.Begin.Virtual() < b.Begin.Virtual():
			return -1
		case a.Begin.Virtual() > b.Begin.Virtual():
			return 1
		default:
			return 0
		}
	})
}
