// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binning implements the pure closed-form arithmetic of the
// tabix hierarchical binning scheme: mapping genomic positions and
// intervals to bin identifiers, independent of any index or file
// representation. It is deliberately free of I/O so the formulas can
// be exhaustively property-tested against a reference enumeration.
package binning

const (
	// MinShift is the log2 of the size of the smallest (leaf) bin.
	MinShift = 14

	// Depth is the number of levels below the root bin.
	Depth = 5

	// PseudoBin is the reserved bin id for mapped/unmapped metadata; it
	// is never a query target.
	PseudoBin = 37450
)

// levelOffset returns the id of the first bin at the given level
// (0 is the root), i.e. ((1<<(3*level))-1)/7.
func levelOffset(level uint) uint32 {
	return (uint32(1)<<(3*level) - 1) / 7
}

// levelShift returns the shift that converts a zero-based genomic
// coordinate into a bin index at the given level.
func levelShift(level uint) uint {
	return MinShift + 3*(Depth-level)
}

// ForPosition returns the id of the leaf bin (level Depth) containing
// the zero-based position pos. This is the closed-form
// "4681 + pos>>14" used throughout the tabix/BAI literature.
func ForPosition(pos int64) uint32 {
	return levelOffset(Depth) + uint32(pos>>MinShift)
}

// OverlappingBins returns every bin, across all levels, whose genomic
// range intersects the zero-based half-open interval [begin, end). For
// intervals inside [0, 1<<29), the span of the root bin, the pseudo-bin
// is never included; end is not clamped to that span, and an interval
// reaching past it yields ids beyond the leaf level's range, which can
// include the pseudo-bin.
//
// begin is clamped to be non-negative and end is clamped to be at
// least begin+1, matching the normative enumeration: a single bin at
// level 0, then for each level k=1..Depth the contiguous run of bins
// spanning [begin>>shift, (end-1)>>shift].
func OverlappingBins(begin, end int64) []uint32 {
	if begin < 0 {
		begin = 0
	}
	if end < begin+1 {
		end = begin + 1
	}
	last := end - 1

	bins := make([]uint32, 0, 1+4*Depth)
	bins = append(bins, levelOffset(0))
	for level := uint(1); level <= Depth; level++ {
		shift := levelShift(level)
		t := levelOffset(level)
		lo := t + uint32(begin>>shift)
		hi := t + uint32(last>>shift)
		for k := lo; k <= hi; k++ {
			bins = append(bins, k)
		}
	}
	return bins
}

// LinearIndexBucket returns the index into a reference's linear index
// array that covers the zero-based position pos.
func LinearIndexBucket(pos int64) int {
	return int(pos >> MinShift)
}

// WindowSize is the width, in bases, of a single linear-index bucket.
const WindowSize = 1 << MinShift
