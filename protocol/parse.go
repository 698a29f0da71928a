// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// ParseGeometry parses a tag geometry of the form
//
//   <read>[<start>-<end>,<start>-<end>,...]
//
// where read is the 1-based read number and each start-end range is a
// 1-based, closed interval of that read. For example, "1[1-16]" is the first
// 16 bases of R1, and "2[1-4,11-14]" is bases 1-4 and 11-14 of R2, in that
// order. A single position may be written without a dash: "1[5]".
//
// Tags are fixed length, so the "end" keyword accepted by some tools for
// read geometries is rejected.
func ParseGeometry(spec string) (TagGeometry, error) {
	invalid := func(format string, args ...interface{}) (TagGeometry, error) {
		msg := fmt.Sprintf(format, args...)
		return TagGeometry{}, errors.E(errors.Invalid, fmt.Sprintf("geometry %q: %s", spec, msg))
	}
	s := strings.TrimSpace(spec)
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return invalid("want <read>[<start>-<end>,...]")
	}
	readNum, err := strconv.Atoi(s[:open])
	if err != nil || readNum < 1 {
		return invalid("bad read number %q", s[:open])
	}
	g := TagGeometry{ReadNum: readNum - 1}
	body := s[open+1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return invalid("no ranges")
	}
	for _, r := range strings.Split(body, ",") {
		r = strings.TrimSpace(r)
		startStr, endStr := r, r
		if i := strings.IndexByte(r, '-'); i >= 0 {
			startStr, endStr = r[:i], r[i+1:]
		}
		if endStr == "end" {
			return invalid("range %q: tags must have a fixed length", r)
		}
		start, err := strconv.Atoi(startStr)
		if err != nil || start < 1 {
			return invalid("bad range start in %q", r)
		}
		end, err := strconv.Atoi(endStr)
		if err != nil || end < start {
			return invalid("bad range end in %q", r)
		}
		if err := g.AddFragment(Fragment{Start: start - 1, Length: end - start + 1}); err != nil {
			return invalid("%v", err)
		}
	}
	return g, nil
}

// FormatGeometry is the inverse of ParseGeometry.
func FormatGeometry(g TagGeometry) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(g.ReadNum + 1))
	b.WriteByte('[')
	for i, f := range g.frags[:g.n] {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d-%d", f.Start+1, f.End())
	}
	b.WriteByte(']')
	return b.String()
}
