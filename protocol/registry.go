// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package protocol

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// GeometryName selects a GeometryProtocol in Opts.Name.
const GeometryName = "geometry"

// Opts selects and parameterizes a protocol.
type Opts struct {
	// Name is a preset name (see Names) or GeometryName. Case-insensitive.
	Name string
	// W1 is the inDrop W1 adapter. Only used by "indrop".
	W1 string
	// FeatureStart and FeatureLength locate the CITE-seq feature tag in R2.
	// Only used by "citeseq"; negative values keep the preset defaults.
	FeatureStart, FeatureLength int
	// BarcodeGeometry and UMIGeometry are ParseGeometry strings. Only used,
	// and then required, by GeometryName.
	BarcodeGeometry, UMIGeometry string
}

// DefaultOpts is the 10x Chromium v2 chemistry.
var DefaultOpts = Opts{
	Name:          "chromium",
	FeatureStart:  -1,
	FeatureLength: -1,
}

type preset struct {
	name string
	new  func(opts Opts) Protocol
}

var presets = []preset{
	{"dropseq", func(Opts) Protocol { return DropSeq() }},
	{"indrop", func(opts Opts) Protocol {
		p := NewInDrop()
		p.SetW1(opts.W1)
		return p
	}},
	{"citeseq", func(opts Opts) Protocol {
		p := NewCITESeq()
		if opts.FeatureStart >= 0 {
			p.SetFeatureStart(opts.FeatureStart)
		}
		if opts.FeatureLength >= 0 {
			p.SetFeatureLength(opts.FeatureLength)
		}
		return p
	}},
	{"chromiumv3", func(Opts) Protocol { return ChromiumV3() }},
	{"chromium", func(Opts) Protocol { return Chromium() }},
	{"gemcode", func(Opts) Protocol { return Gemcode() }},
	{"quartzseq2", func(Opts) Protocol { return QuartzSeq2() }},
	{"celseq", func(Opts) Protocol { return CELSeq() }},
	{"celseq2", func(Opts) Protocol { return CELSeq2() }},
	{"custom", func(Opts) Protocol { return Custom() }},
}

// Names lists the preset names accepted by New, followed by GeometryName.
func Names() []string {
	names := make([]string, 0, len(presets)+1)
	for _, p := range presets {
		names = append(names, p.name)
	}
	return append(names, GeometryName)
}

// New creates the protocol selected by opts. Geometry strings are rejected
// for presets, and both are required for GeometryName.
func New(opts Opts) (Protocol, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Name))
	if name == GeometryName {
		return newGeometry(opts)
	}
	if opts.BarcodeGeometry != "" || opts.UMIGeometry != "" {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("protocol %q: geometries are only allowed with protocol %q", opts.Name, GeometryName))
	}
	for _, p := range presets {
		if p.name == name {
			return p.new(opts), nil
		}
	}
	return nil, errors.E(errors.NotExist,
		fmt.Sprintf("unknown protocol %q, want one of %s", opts.Name, strings.Join(Names(), ", ")))
}

func newGeometry(opts Opts) (Protocol, error) {
	if opts.BarcodeGeometry == "" || opts.UMIGeometry == "" {
		return nil, errors.E(errors.Invalid, "protocol geometry: both barcode and UMI geometries are required")
	}
	bc, err := ParseGeometry(opts.BarcodeGeometry)
	if err != nil {
		return nil, err
	}
	umi, err := ParseGeometry(opts.UMIGeometry)
	if err != nil {
		return nil, err
	}
	return NewGeometryProtocol(bc, umi), nil
}
