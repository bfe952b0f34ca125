// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"bytes"
	"io"

	"gopkg.in/check.v1"

	"github.com/sanogenetics/puretabix/bgzf"
)

// abcMember is a single, hand-built BGZF member whose decompressed
// payload is the three bytes "abc", built from a stored (uncompressed)
// deflate block so its bytes can be verified by inspection rather than
// by running a compressor.
var abcMember = []byte{
	// header: ID1 ID2 CM FLG MTIME(4) XFL OS, XLEN=6
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	// extra: SI1='B' SI2='C' SLEN=2 BSIZE=33
	0x42, 0x43, 0x02, 0x00, 0x21, 0x00,
	// cdata: stored deflate block, LEN=3, NLEN=~3, "abc"
	0x01, 0x03, 0x00, 0xfc, 0xff, 0x61, 0x62, 0x63,
	// trailer: CRC32("abc")=0x352441c2, ISIZE=3
	0xc2, 0x41, 0x24, 0x35, 0x03, 0x00, 0x00, 0x00,
}

var eofMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff,
	0x06, 0x00, 0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

func twoMemberStream() []byte {
	buf := make([]byte, 0, len(abcMember)+len(eofMarker))
	buf = append(buf, abcMember...)
	buf = append(buf, eofMarker...)
	return buf
}

// threeMemberStream repeats abcMember so the gap-skipping test can
// exercise a jump across a member boundary without needing a second
// hand-computed CRC32 value.
func threeMemberStream() []byte {
	buf := make([]byte, 0, 2*len(abcMember)+len(eofMarker))
	buf = append(buf, abcMember...)
	buf = append(buf, abcMember...)
	buf = append(buf, eofMarker...)
	return buf
}

func (s *S) TestChunkReaderSingleChunk(c *check.C) {
	data := twoMemberStream()
	br, err := bgzf.NewReader(bytes.NewReader(data), nil)
	c.Assert(err, check.IsNil)
	defer br.Close()

	plan := []bgzf.Chunk{
		{Begin: bgzf.Offset{File: 0, Block: 0}, End: bgzf.Offset{File: 0, Block: 3}},
	}
	cr, err := NewChunkReader(br, plan)
	c.Assert(err, check.IsNil)

	got, err := io.ReadAll(cr)
	c.Assert(err, check.IsNil)
	c.Assert(string(got), check.Equals, "abc")
}

func (s *S) TestChunkReaderStopsAtChunkEnd(c *check.C) {
	data := twoMemberStream()
	br, err := bgzf.NewReader(bytes.NewReader(data), nil)
	c.Assert(err, check.IsNil)
	defer br.Close()

	// Only "ab" is in the plan; the byte "c" must never be returned.
	plan := []bgzf.Chunk{
		{Begin: bgzf.Offset{File: 0, Block: 0}, End: bgzf.Offset{File: 0, Block: 2}},
	}
	cr, err := NewChunkReader(br, plan)
	c.Assert(err, check.IsNil)

	got, err := io.ReadAll(cr)
	c.Assert(err, check.IsNil)
	c.Assert(string(got), check.Equals, "ab")
}

func (s *S) TestChunkReaderSkipsGapBetweenChunks(c *check.C) {
	data := threeMemberStream()
	br, err := bgzf.NewReader(bytes.NewReader(data), nil)
	c.Assert(err, check.IsNil)
	defer br.Close()

	secondBegin := bgzf.Offset{File: int64(len(abcMember)), Block: 0}
	secondEnd := bgzf.Offset{File: int64(len(abcMember)), Block: 3}

	// Plan skips "bc" of the first member and the gap before the second
	// member entirely: only "a" and the whole second "abc" are
	// selected, exercising both an in-block boundary and a jump across
	// a member boundary.
	plan := []bgzf.Chunk{
		{Begin: bgzf.Offset{File: 0, Block: 0}, End: bgzf.Offset{File: 0, Block: 1}},
		{Begin: secondBegin, End: secondEnd},
	}
	cr, err := NewChunkReader(br, plan)
	c.Assert(err, check.IsNil)

	got, err := io.ReadAll(cr)
	c.Assert(err, check.IsNil)
	c.Assert(string(got), check.Equals, "aabc")
}

func (s *S) TestChunkReaderEmptyPlan(c *check.C) {
	data := twoMemberStream()
	br, err := bgzf.NewReader(bytes.NewReader(data), nil)
	c.Assert(err, check.IsNil)
	defer br.Close()

	cr, err := NewChunkReader(br, nil)
	c.Assert(err, check.IsNil)

	n, err := cr.Read(make([]byte, 1))
	c.Assert(n, check.Equals, 0)
	c.Assert(err, check.Equals, io.EOF)
}
