// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

// Block holds the decompressed payload of a single BGZF member
// together with the information needed to resume reading the stream
// immediately after it.
type Block struct {
	// Offset is the compressed byte offset of the member within the
	// underlying file (the high 48 bits of a virtual offset).
	Offset int64

	// Data is the member's decompressed payload.
	Data []byte

	// Length is the total on-disk length of the member, in bytes,
	// including its header, extra field, deflate stream and trailer.
	Length int
}

// Cache is a Block caching type, consulted by Reader before reading a
// block from the underlying file and updated after a block is read.
// Implementations are provided by the cache package.
type Cache interface {
	// Get returns the Block with the given compressed offset and true,
	// or the zero Block and false if it is not cached.
	Get(offset int64) (Block, bool)

	// Put inserts a Block into the cache.
	Put(Block)
}
