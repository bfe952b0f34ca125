// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"gopkg.in/check.v1"

	"github.com/sanogenetics/puretabix/bgzf"
)

func off(file int64, block uint16) bgzf.Offset {
	return bgzf.Offset{File: file, Block: block}
}

func (s *S) TestIdentity(c *check.C) {
	chunks := []bgzf.Chunk{
		{Begin: off(0, 0), End: off(0, 10)},
		{Begin: off(10, 0), End: off(10, 5)},
	}
	got := Identity(chunks)
	c.Assert(got, check.DeepEquals, chunks)
}

func (s *S) TestAdjacentMergesOverlapping(c *check.C) {
	chunks := []bgzf.Chunk{
		{Begin: off(0, 0), End: off(0, 100)},
		{Begin: off(0, 50), End: off(0, 150)},
		{Begin: off(200, 0), End: off(200, 10)},
	}
	got := Adjacent(chunks)
	c.Assert(got, check.DeepEquals, []bgzf.Chunk{
		{Begin: off(0, 0), End: off(0, 150)},
		{Begin: off(200, 0), End: off(200, 10)},
	})
}

func (s *S) TestAdjacentMergesTouching(c *check.C) {
	chunks := []bgzf.Chunk{
		{Begin: off(0, 0), End: off(0, 100)},
		{Begin: off(0, 100), End: off(1, 0)},
	}
	got := Adjacent(chunks)
	c.Assert(got, check.DeepEquals, []bgzf.Chunk{
		{Begin: off(0, 0), End: off(1, 0)},
	})
}

func (s *S) TestAdjacentLeavesGapUnmerged(c *check.C) {
	chunks := []bgzf.Chunk{
		{Begin: off(0, 0), End: off(0, 10)},
		{Begin: off(5, 0), End: off(5, 10)},
	}
	got := Adjacent(chunks)
	c.Assert(got, check.DeepEquals, chunks)
}

func (s *S) TestAdjacentEmpty(c *check.C) {
	c.Assert(Adjacent(nil), check.IsNil)
}

func (s *S) TestSquashSpansEverything(c *check.C) {
	chunks := []bgzf.Chunk{
		{Begin: off(0, 0), End: off(0, 10)},
		{Begin: off(5, 0), End: off(9, 10)},
		{Begin: off(100, 0), End: off(100, 1)},
	}
	got := Squash(chunks)
	c.Assert(got, check.DeepEquals, []bgzf.Chunk{
		{Begin: off(0, 0), End: off(100, 1)},
	})
}

func (s *S) TestSortByBegin(c *check.C) {
	chunks := []bgzf.Chunk{
		{Begin: off(100, 0), End: off(100, 1)},
		{Begin: off(0, 0), End: off(0, 1)},
		{Begin: off(50, 0), End: off(50, 1)},
	}
	SortByBegin(chunks)
	c.Assert(chunks, check.DeepEquals, []bgzf.Chunk{
		{Begin: off(0, 0), End: off(0, 1)},
		{Begin: off(50, 0), End: off(50, 1)},
		{Begin: off(100, 0), End: off(100, 1)},
	})
}
