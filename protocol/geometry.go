// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package protocol

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// MaxFragments is the maximum number of fragments in a TagGeometry.
const MaxFragments = 16

// Fragment is a contiguous region of a read, [Start, Start+Length), 0-based.
type Fragment struct {
	Start, Length int
}

// End returns the exclusive end offset of the fragment.
func (f Fragment) End() int { return f.Start + f.Length }

// TagGeometry describes the layout of one tag (a barcode or a UMI) within one
// read of a read set. The tag is the concatenation of the fragments, in
// order. Fragments may overlap and need not be sorted.
//
// The zero TagGeometry has no fragments, reads from read 0, and extracts the
// empty string from any read.
type TagGeometry struct {
	// ReadNum is the 0-based index of the read the tag is taken from.
	ReadNum int

	frags [MaxFragments]Fragment
	n     int
	// length is the sum of fragment lengths.
	length int
	// largestIndex is max(frag.End()) over the fragments, i.e., the minimum
	// read length needed for extraction.
	largestIndex int
}

// NewTagGeometry creates a TagGeometry reading from readNum with the given
// fragments. It returns an error if readNum or any fragment is negative, or if
// there are more than MaxFragments fragments.
func NewTagGeometry(readNum int, frags ...Fragment) (TagGeometry, error) {
	g := TagGeometry{ReadNum: readNum}
	if readNum < 0 {
		return g, errors.E(errors.Invalid, fmt.Sprintf("tag geometry: negative read number %d", readNum))
	}
	for _, f := range frags {
		if err := g.AddFragment(f); err != nil {
			return TagGeometry{}, err
		}
	}
	return g, nil
}

// AddFragment appends a fragment to the geometry, updating its length and
// largest index.
func (g *TagGeometry) AddFragment(f Fragment) error {
	if f.Start < 0 || f.Length < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("tag geometry: invalid fragment %+v", f))
	}
	if g.n == MaxFragments {
		return errors.E(errors.Invalid, fmt.Sprintf("tag geometry: more than %d fragments", MaxFragments))
	}
	g.frags[g.n] = f
	g.n++
	g.length += f.Length
	if e := f.End(); e > g.largestIndex {
		g.largestIndex = e
	}
	return nil
}

// NumFragments returns the number of fragments.
func (g *TagGeometry) NumFragments() int { return g.n }

// Fragments returns a copy of the fragments, in concatenation order.
func (g *TagGeometry) Fragments() []Fragment {
	frags := make([]Fragment, g.n)
	copy(frags, g.frags[:g.n])
	return frags
}

// Length returns the length of an extracted tag.
func (g *TagGeometry) Length() int { return g.length }

// LargestIndex returns the minimum read length needed to extract the tag.
func (g *TagGeometry) LargestIndex() int { return g.largestIndex }

// Extract appends the tag found in read to dst. If read is shorter than
// LargestIndex(), it returns dst unchanged and false.
//
// The caller must pass the read selected by ReadNum.
func (g *TagGeometry) Extract(dst []byte, read string) ([]byte, bool) {
	if len(read) < g.largestIndex {
		return dst, false
	}
	for _, f := range g.frags[:g.n] {
		dst = append(dst, read[f.Start:f.End()]...)
	}
	return dst, true
}

// ExtractString is a convenience wrapper around Extract.
func (g *TagGeometry) ExtractString(read string) (string, bool) {
	buf, ok := g.Extract(make([]byte, 0, g.length), read)
	if !ok {
		return "", false
	}
	return string(buf), true
}

// extractFrom picks the read selected by ReadNum and extracts the tag.
func (g *TagGeometry) extractFrom(dst []byte, reads []string) ([]byte, bool) {
	if g.ReadNum >= len(reads) {
		return dst, false
	}
	return g.Extract(dst, reads[g.ReadNum])
}

// String returns a human-readable description of the geometry, e.g.
// "read 1: [0,16) [20,24) (length 20)". Offsets are 0-based, half-open.
func (g TagGeometry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "read %d:", g.ReadNum)
	for _, f := range g.frags[:g.n] {
		fmt.Fprintf(&b, " [%d,%d)", f.Start, f.End())
	}
	fmt.Fprintf(&b, " (length %d)", g.length)
	return b.String()
}
