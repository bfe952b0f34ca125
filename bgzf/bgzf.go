// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bgzf implements random access reading of the Blocked GZip
// Format (BGZF): a concatenation of independently gzip-compressed
// members, each carrying a BC extra subfield that records its own
// compressed length, addressable as a single virtual byte stream.
package bgzf

import (
	"github.com/pkg/errors"
)

const (
	// BlockSize is the maximum size of a decompressed BGZF block.
	BlockSize = 0x10000

	// headerLen is the length of the fixed portion of a gzip/BGZF
	// member header, up to and including XLEN.
	headerLen = 12

	// trailerLen is the length of the CRC32+ISIZE trailer following
	// the deflate stream.
	trailerLen = 8
)

// magicEOF is the 28-byte empty BGZF block samtools writes to mark the
// end of a well-formed stream. Its presence is not required for
// correctness; Reader treats it, like any empty block, as the end of
// the stream.
var magicEOF = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff,
	0x06, 0x00, 0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

var (
	// ErrBadMagic is returned when a BGZF member does not begin with
	// the expected gzip/FEXTRA magic bytes.
	ErrBadMagic = errors.New("bgzf: bad member magic")

	// ErrMissingBCSubfield is returned when a member's EXTRA field does
	// not contain the BC subfield that records the member's size.
	ErrMissingBCSubfield = errors.New("bgzf: missing BC extra subfield")

	// ErrTruncatedMember is returned when fewer bytes than the member
	// header promises could be read.
	ErrTruncatedMember = errors.New("bgzf: truncated member")

	// ErrChecksum is returned when a decompressed block's CRC32 does
	// not match the trailer.
	ErrChecksum = errors.New("bgzf: checksum mismatch")

	// ErrSize is returned when a decompressed block's length does not
	// match the ISIZE trailer.
	ErrSize = errors.New("bgzf: size mismatch")

	// ErrNotSeekable reports an underlying reader that does not
	// support seeking. Reader never returns it, since NewReader only
	// accepts an io.ReadSeeker.
	ErrNotSeekable = errors.New("bgzf: underlying reader is not seekable")
)
