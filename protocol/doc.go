// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package protocol describes where the cell barcode and the UMI live in the
// reads of a single-cell sequencing library, and extracts them.
//
// A library chemistry is represented by a Protocol. Most chemistries are
// fixed-length presets (see Rule): the barcode and the UMI form a contiguous
// block anchored at one end of the barcode read. Libraries that do not fit a
// preset are described by a GeometryProtocol, which holds one TagGeometry for
// the barcode and one for the UMI. A TagGeometry is an ordered list of
// (start, length) fragments gathered from one read of a read set, so tags may
// be split over several non-contiguous regions.
//
// Protocols are configured once, before reads are processed, and are then
// shared read-only by any number of goroutines.
//
// Extraction is append-style: ExtractBarcode(dst, reads) appends the tag to
// dst and reports whether the read set was long enough. On failure, dst is
// returned unchanged, so a short read never clobbers a caller's buffer.
// Callers are expected to drop such reads and continue.
package protocol
