// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cache provides block cache implementations for the bgzf
// package. The core only ever needs a single slot for correctness
// (re-reading a just-consumed block when a record straddles block
// boundaries), but a handful of slots improve locality when a query's
// chunk plan jumps between a small working set of blocks.
package cache

import "github.com/sanogenetics/puretabix/bgzf"

var _ bgzf.Cache = (*LRU)(nil)

// LRU is a fixed-capacity, least-recently-used bgzf.Cache. It is not
// safe for concurrent use, matching the single-reader model a Reader
// is used under.
type LRU struct {
	cap   int
	order []int64 // most-recently-used last
	table map[int64]bgzf.Block
}

// NewLRU returns an LRU cache holding at most n blocks. n less than 1
// is clamped to 1: a *LRU is never itself nil, since a non-nil *LRU
// wrapped in the bgzf.Cache interface value bgzf.NewReader holds is
// indistinguishable from a populated one, and a nil *LRU receiver
// would panic on its first Get or Put. Pass a nil bgzf.Cache directly
// to NewReader for "no cache" instead.
func NewLRU(n int) *LRU {
	if n < 1 {
		n = 1
	}
	return &LRU{
		cap:   n,
		table: make(map[int64]bgzf.Block, n),
	}
}

// Len returns the number of blocks currently held.
func (c *LRU) Len() int { return len(c.table) }

// Cap returns the cache's capacity.
func (c *LRU) Cap() int { return c.cap }

// Get returns the Block at offset and moves it to the most-recently-used
// position.
func (c *LRU) Get(offset int64) (bgzf.Block, bool) {
	blk, ok := c.table[offset]
	if !ok {
		return bgzf.Block{}, false
	}
	c.touch(offset)
	return blk, true
}

// Put inserts blk into the cache, evicting the least-recently-used
// entry if the cache is already at capacity.
func (c *LRU) Put(blk bgzf.Block) {
	if _, exists := c.table[blk.Offset]; !exists && len(c.table) >= c.cap {
		c.evictOldest()
	}
	c.table[blk.Offset] = blk
	c.touch(blk.Offset)
}

func (c *LRU) touch(offset int64) {
	for i, o := range c.order {
		if o == offset {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, offset)
}

func (c *LRU) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.table, oldest)
}
