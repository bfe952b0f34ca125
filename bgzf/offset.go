// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

// Offset is a virtual file offset into a BGZF stream: File is the byte
// offset of the start of a block within the compressed file (the high
// 48 bits of a virtual offset) and Block is the byte offset within
// that block's decompressed payload (the low 16 bits).
type Offset struct {
	File  int64
	Block uint16
}

// Virtual returns the 64-bit packed virtual offset (File<<16 | Block).
func (o Offset) Virtual() uint64 {
	return uint64(o.File)<<16 | uint64(o.Block)
}

// OffsetFromVirtual decodes a 64-bit packed virtual offset into its
// block-offset and within-block-offset components.
func OffsetFromVirtual(v uint64) Offset {
	return Offset{File: int64(v >> 16), Block: uint16(v)}
}

// Less reports whether o sorts before other in the virtual stream.
func (o Offset) Less(other Offset) bool {
	return o.Virtual() < other.Virtual()
}

// Chunk is a half-open range [Begin, End) of virtual offsets.
type Chunk struct {
	Begin Offset
	End   Offset
}

// Empty reports whether the chunk spans no bytes.
func (c Chunk) Empty() bool {
	return c.Begin.Virtual() >= c.End.Virtual()
}
