// Copyright ©2024 The puretabix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package index provides the chunk-coalescing and virtual-stream
// driving code shared by tabix-style BGZF indexes: turning a set of
// candidate (begin, end) virtual-offset chunks into the minimal,
// ordered, non-overlapping read plan, and then driving a bgzf.Reader
// through that plan.
package index

import "github.com/pkg/errors"

// ErrNoReference is returned when a query names a reference that is
// not present in the index.
var ErrNoReference = errors.New("index: no reference")
