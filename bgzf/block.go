// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

// readMember reads one BGZF member from r, starting at the current
// read position, and returns its decompressed payload together with
// the member's total on-disk length.
//
// It scans the EXTRA area for the BC subfield rather than assuming its
// position, since other subfields are permitted to precede or follow
// it.
func readMember(r io.Reader) (data []byte, length int, err error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, errors.Wrap(ErrTruncatedMember, err.Error())
	}
	if hdr[0] != 0x1f || hdr[1] != 0x8b {
		return nil, 0, ErrBadMagic
	}
	if hdr[2] != 0x08 {
		return nil, 0, errors.Wrap(ErrBadMagic, "unsupported compression method")
	}
	if hdr[3]&0x04 == 0 {
		return nil, 0, errors.Wrap(ErrMissingBCSubfield, "FEXTRA flag not set")
	}

	xlen := int(binary.LittleEndian.Uint16(hdr[10:12]))
	extra := make([]byte, xlen)
	if _, err := io.ReadFull(r, extra); err != nil {
		return nil, 0, errors.Wrap(ErrTruncatedMember, err.Error())
	}
	bsize, ok := scanBCSubfield(extra)
	if !ok {
		return nil, 0, ErrMissingBCSubfield
	}

	total := int(bsize) + 1
	cdataLen := total - headerLen - xlen - trailerLen
	if cdataLen < 0 {
		return nil, 0, errors.Wrap(ErrTruncatedMember, "BSIZE smaller than header+extra+trailer")
	}
	cdata := make([]byte, cdataLen)
	if _, err := io.ReadFull(r, cdata); err != nil {
		return nil, 0, errors.Wrap(ErrTruncatedMember, err.Error())
	}

	fr := flate.NewReader(bytes.NewReader(cdata))
	defer fr.Close()
	decompressed, err := io.ReadAll(fr)
	if err != nil {
		return nil, 0, errors.Wrap(err, "bgzf: inflate member")
	}

	var tail [trailerLen]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return nil, 0, errors.Wrap(ErrTruncatedMember, err.Error())
	}
	wantCRC := binary.LittleEndian.Uint32(tail[0:4])
	wantSize := binary.LittleEndian.Uint32(tail[4:8])
	if crc32.ChecksumIEEE(decompressed) != wantCRC {
		return nil, 0, ErrChecksum
	}
	if uint32(len(decompressed)) != wantSize {
		return nil, 0, ErrSize
	}

	return decompressed, total, nil
}

// scanBCSubfield walks the subfields of a gzip EXTRA field looking for
// the BC subfield (SI1='B', SI2='C', SLEN=2) and returns its BSIZE
// payload.
func scanBCSubfield(extra []byte) (bsize uint16, ok bool) {
	for i := 0; i+4 <= len(extra); {
		si1, si2 := extra[i], extra[i+1]
		slen := int(binary.LittleEndian.Uint16(extra[i+2 : i+4]))
		if i+4+slen > len(extra) {
			break
		}
		if si1 == 'B' && si2 == 'C' && slen == 2 {
			return binary.LittleEndian.Uint16(extra[i+4 : i+6]), true
		}
		i += 4 + slen
	}
	return 0, false
}

// isEOFBlock reports whether data is the decompressed payload of a
// zero-length BGZF member, i.e. an EOF marker block.
func isEOFBlock(data []byte) bool {
	return len(data) == 0
}
