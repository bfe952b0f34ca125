// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tabix provides random-access querying of a tab-delimited,
// BGZF-compressed data file using a companion Tabix index: resolving a
// reference name and genomic interval to the exact set of lines in the
// data file that overlap it, without decompressing or scanning the
// file from the start.
package tabix

import (
	"compress/flate"
	"errors"

	"github.com/sanogenetics/puretabix/bgzf"
)

// MalformedIndexError reports that the ".tbi" index could not be
// decoded. It is only ever returned from Open, since an index is
// decoded once in full and never partially trusted.
type MalformedIndexError struct {
	Err error
}

func (e *MalformedIndexError) Error() string {
	return "tabix: malformed index: " + e.Err.Error()
}

func (e *MalformedIndexError) Unwrap() error { return e.Err }

// MalformedBlockError reports that the underlying BGZF data stream
// could not be decoded while servicing a query. The Handle itself
// remains usable for subsequent queries; only the query that
// encountered the bad block fails.
type MalformedBlockError struct {
	Err error
}

func (e *MalformedBlockError) Error() string {
	return "tabix: malformed block: " + e.Err.Error()
}

func (e *MalformedBlockError) Unwrap() error { return e.Err }

// LineParseError reports that a line inside a selected chunk could not
// be interpreted according to the index's column layout (for example,
// a non-numeric begin/end column).
type LineParseError struct {
	Line []byte
	Err  error
}

func (e *LineParseError) Error() string {
	return "tabix: malformed line: " + e.Err.Error()
}

func (e *LineParseError) Unwrap() error { return e.Err }

// IOError reports a Read or Seek failure on one of the underlying file
// handles, as distinct from a parse failure in the bytes they returned.
// It is surfaced unchanged: Unwrap returns exactly the error the
// underlying handle produced.
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return "tabix: io failure: " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// blockErr classifies a failure surfaced from the bgzf layer: format
// errors (bad magic, missing BC subfield, checksum/size mismatch,
// truncation, corrupt deflate data) become MalformedBlockError,
// anything else - a bare Read/Seek failure from the underlying handle -
// becomes IOError.
func blockErr(err error) error {
	if err == nil {
		return nil
	}
	var corrupt flate.CorruptInputError
	switch {
	case errors.Is(err, bgzf.ErrBadMagic),
		errors.Is(err, bgzf.ErrMissingBCSubfield),
		errors.Is(err, bgzf.ErrTruncatedMember),
		errors.Is(err, bgzf.ErrChecksum),
		errors.Is(err, bgzf.ErrSize),
		errors.Is(err, bgzf.ErrNotSeekable),
		errors.As(err, &corrupt):
		return &MalformedBlockError{Err: err}
	default:
		return &IOError{Err: err}
	}
}
