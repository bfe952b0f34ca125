// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tbi decodes the binary Tabix index format (".tbi"): a
// per-reference hierarchical bin tree plus linear index, stored as the
// uncompressed payload of a BGZF stream. Package tbi only reads the
// format; building one is out of scope (see the tabix package's test
// files for the private fixture encoder used by this module's own
// tests).
package tbi

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/sanogenetics/puretabix/bgzf"
	"github.com/sanogenetics/puretabix/binning"
)

var tbiMagic = [4]byte{'T', 'B', 'I', 0x1}

var (
	// ErrBadMagic is returned when the stream does not begin with the
	// 4-byte Tabix magic number.
	ErrBadMagic = errors.New("tbi: bad magic number")

	// ErrInvalidFormat is returned when the header's format field
	// carries bits outside {0, 1, 2} | {0, 0x10000}.
	ErrInvalidFormat = errors.New("tbi: invalid format field")

	// ErrNameCountMismatch is returned when the number of NUL-separated
	// names does not match the declared reference count.
	ErrNameCountMismatch = errors.New("tbi: name count mismatch")

	// ErrDuplicateName is returned when the same reference name appears
	// twice in the header.
	ErrDuplicateName = errors.New("tbi: duplicate reference name")

	// ErrDuplicateBin is returned when the same bin id appears twice
	// within one reference's bin list.
	ErrDuplicateBin = errors.New("tbi: duplicate bin id")
)

// PseudoBin is the bin id reserved for per-reference mapped/unmapped
// statistics; it carries no queryable chunks.
const PseudoBin = binning.PseudoBin

// Header carries the tabix format parameters common to every reference
// in the index.
type Header struct {
	// Format is the raw on-disk format field: 0 generic, 1 SAM, 2 VCF,
	// optionally OR'd with 0x10000 to mark zero-based coordinates.
	Format int32

	// ZeroBased reports whether BeginColumn/EndColumn are already
	// zero-based half-open (format & 0x10000 != 0); when false they are
	// 1-based closed and must be converted.
	ZeroBased bool

	// NameColumn, BeginColumn, EndColumn are 1-based column indexes
	// (EndColumn may be 0, meaning "not present", as in VCF).
	NameColumn, BeginColumn, EndColumn int32

	// Meta is the comment-line marker byte (commonly '#').
	Meta byte

	// Skip is the number of leading header lines to skip.
	Skip int32
}

// ReferenceStats holds the per-reference mapped/unmapped record counts
// stored in the pseudo-bin, when present.
type ReferenceStats struct {
	Chunk            bgzf.Chunk
	Mapped, Unmapped uint64
}

// RefIndex is one reference's bin tree and linear index.
type RefIndex struct {
	Bins      map[uint32][]bgzf.Chunk
	Stats     *ReferenceStats
	Intervals []bgzf.Offset
}

// Index is a fully decoded Tabix index.
type Index struct {
	Header

	names   []string
	nameMap map[string]int
	Refs    []RefIndex
}

// Names returns the reference names in file order. The returned slice
// must not be modified.
func (idx *Index) Names() []string { return idx.names }

// RefID returns the reference index for name, and whether it was found.
func (idx *Index) RefID(name string) (int, bool) {
	id, ok := idx.nameMap[name]
	return id, ok
}

// Decode reads a Tabix index from its decompressed form. Callers must
// first unwrap the BGZF container the format is conventionally stored
// in (tabix indexes are themselves BGZF streams, despite holding no
// random-access structure of their own).
func Decode(r io.Reader) (*Index, error) {
	idx := &Index{nameMap: map[string]int{}}

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(ErrBadMagic, err.Error())
	}
	if magic != tbiMagic {
		return nil, ErrBadMagic
	}

	var nRef int32
	if err := binary.Read(r, binary.LittleEndian, &nRef); err != nil {
		return nil, errors.Wrap(err, "tbi: read reference count")
	}

	if err := readHeader(r, idx); err != nil {
		return nil, err
	}
	if len(idx.names) != int(nRef) {
		return nil, errors.Wrapf(ErrNameCountMismatch, "%d names, %d references declared", len(idx.names), nRef)
	}
	for i, name := range idx.names {
		if _, dup := idx.nameMap[name]; dup {
			return nil, errors.Wrapf(ErrDuplicateName, "%q", name)
		}
		idx.nameMap[name] = i
	}

	idx.Refs = make([]RefIndex, nRef)
	for i := range idx.Refs {
		ref, err := readRefIndex(r)
		if err != nil {
			return nil, errors.Wrapf(err, "tbi: reference %d (%s)", i, idx.names[i])
		}
		idx.Refs[i] = ref
	}

	return idx, nil
}

func readHeader(r io.Reader, idx *Index) error {
	var format int32
	if err := binary.Read(r, binary.LittleEndian, &format); err != nil {
		return errors.Wrap(err, "tbi: read format")
	}
	fileFormat := format &^ 0x10000
	if fileFormat != 0 && fileFormat != 1 && fileFormat != 2 {
		return errors.Wrapf(ErrInvalidFormat, "%#x", format)
	}
	idx.Format = format
	idx.ZeroBased = format&0x10000 != 0

	for _, dst := range []*int32{&idx.NameColumn, &idx.BeginColumn, &idx.EndColumn} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return errors.Wrap(err, "tbi: read column index")
		}
	}

	var meta int32
	if err := binary.Read(r, binary.LittleEndian, &meta); err != nil {
		return errors.Wrap(err, "tbi: read meta character")
	}
	idx.Meta = byte(meta)

	if err := binary.Read(r, binary.LittleEndian, &idx.Skip); err != nil {
		return errors.Wrap(err, "tbi: read skip count")
	}

	var nameLen int32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return errors.Wrap(err, "tbi: read name blob length")
	}
	raw := make([]byte, nameLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return errors.Wrap(err, "tbi: read name blob")
	}
	if nameLen > 0 {
		if raw[len(raw)-1] != 0 {
			return errors.New("tbi: name blob not NUL-terminated")
		}
		idx.names = strings.Split(string(raw[:len(raw)-1]), "\x00")
	}

	return nil
}

func readRefIndex(r io.Reader) (RefIndex, error) {
	var ref RefIndex

	var nBin int32
	if err := binary.Read(r, binary.LittleEndian, &nBin); err != nil {
		return ref, errors.Wrap(err, "read bin count")
	}
	if nBin > 0 {
		ref.Bins = make(map[uint32][]bgzf.Chunk, nBin)
	}
	for i := int32(0); i < nBin; i++ {
		var binID uint32
		var nChunk int32
		if err := binary.Read(r, binary.LittleEndian, &binID); err != nil {
			return ref, errors.Wrap(err, "read bin id")
		}
		if err := binary.Read(r, binary.LittleEndian, &nChunk); err != nil {
			return ref, errors.Wrap(err, "read chunk count")
		}
		if binID == PseudoBin {
			stats, err := readStats(r, nChunk)
			if err != nil {
				return ref, err
			}
			ref.Stats = stats
			continue
		}
		if _, dup := ref.Bins[binID]; dup {
			return ref, errors.Wrapf(ErrDuplicateBin, "%d", binID)
		}
		chunks, err := readChunks(r, nChunk)
		if err != nil {
			return ref, errors.Wrap(err, "read chunks")
		}
		ref.Bins[binID] = chunks
	}

	var nIntv int32
	if err := binary.Read(r, binary.LittleEndian, &nIntv); err != nil {
		return ref, errors.Wrap(err, "read interval count")
	}
	intervals := make([]bgzf.Offset, nIntv)
	for i := range intervals {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return ref, errors.Wrap(err, "read linear interval")
		}
		intervals[i] = bgzf.OffsetFromVirtual(v)
	}
	ref.Intervals = forwardFill(intervals)

	return ref, nil
}

func readChunks(r io.Reader, n int32) ([]bgzf.Chunk, error) {
	chunks := make([]bgzf.Chunk, n)
	for i := range chunks {
		var begin, end uint64
		if err := binary.Read(r, binary.LittleEndian, &begin); err != nil {
			return nil, errors.Wrap(err, "read chunk begin")
		}
		if err := binary.Read(r, binary.LittleEndian, &end); err != nil {
			return nil, errors.Wrap(err, "read chunk end")
		}
		chunks[i] = bgzf.Chunk{Begin: bgzf.OffsetFromVirtual(begin), End: bgzf.OffsetFromVirtual(end)}
	}
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
	return chunks, nil
}

// readStats reads the pseudo-bin payload: two 16-byte "chunks" encoding
// (unmapped_chunk.Begin, unmapped_chunk.End, mapped_count,
// unmapped_count) respectively.
func readStats(r io.Reader, n int32) (*ReferenceStats, error) {
	if n != 2 {
		return nil, fmt.Errorf("tbi: malformed pseudo-bin: %d chunk entries, want 2", n)
	}
	var begin, end, mapped, unmapped uint64
	for _, dst := range []*uint64{&begin, &end, &mapped, &unmapped} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, errors.Wrap(err, "read pseudo-bin stats")
		}
	}
	return &ReferenceStats{
		Chunk:    bgzf.Chunk{Begin: bgzf.OffsetFromVirtual(begin), End: bgzf.OffsetFromVirtual(end)},
		Mapped:   mapped,
		Unmapped: unmapped,
	}, nil
}

// forwardFill replaces each zero-valued (hole) entry in a reference's
// linear index with the nearest following non-zero entry, scanning from
// the end of the array toward the start: a window with no overlapping
// record inherits the minimum offset of the next window that has one,
// since no record could begin before it once the preceding windows are
// also known empty. Holes with no following non-zero entry (the tail of
// the array) are left as the zero offset.
func forwardFill(offsets []bgzf.Offset) []bgzf.Offset {
	var next bgzf.Offset
	seen := false
	for i := len(offsets) - 1; i >= 0; i-- {
		o := offsets[i]
		if o.Virtual() == 0 {
			if seen {
				offsets[i] = next
			}
			continue
		}
		next = o
		seen = true
	}
	return offsets
}
