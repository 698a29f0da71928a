// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package protocol

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/sctag/umi"
)

// Protocol locates the cell barcode and the UMI in a read set. reads is
// indexed by read number (reads[0] is R1, reads[1] is R2, ...).
//
// ExtractBarcode and ExtractUMI append the tag to dst. They return dst
// unchanged and false if the read set is too short or lacks the expected
// layout; such reads should be skipped. Implementations are safe for
// concurrent use once configured.
type Protocol interface {
	Name() string
	BarcodeLength() int
	UMILength() int
	ExtractBarcode(dst []byte, reads []string) ([]byte, bool)
	ExtractUMI(dst []byte, reads []string) ([]byte, bool)
}

// Encodable is implemented by fixed-length protocols whose barcodes have a
// known anchoring and integer encoding range.
type Encodable interface {
	End() BarcodeEnd
	MaxValue() uint32
}

var (
	_ Protocol  = Rule{}
	_ Protocol  = (*InDrop)(nil)
	_ Protocol  = (*CITESeq)(nil)
	_ Protocol  = (*GeometryProtocol)(nil)
	_ Encodable = Rule{}
)

// MaxBarcodeValue returns 4^n, the number of distinct n-base barcodes,
// saturated at math.MaxUint32.
func MaxBarcodeValue(n int) uint32 { return umi.MaxValue(n) }

// MinReads returns the number of reads a read set must have for p.
func MinReads(p Protocol) int {
	switch p := p.(type) {
	case *GeometryProtocol:
		n := p.bcGeo.ReadNum
		if p.umiGeo.ReadNum > n {
			n = p.umiGeo.ReadNum
		}
		return n + 1
	case *CITESeq:
		return FeatureRead + 1
	}
	return 1
}

// GeometryProtocol is a protocol whose barcode and UMI are described by
// TagGeometries. It has no anchoring end and no barcode encoding range, so it
// does not implement Encodable.
type GeometryProtocol struct {
	bcGeo  TagGeometry
	umiGeo TagGeometry
}

// NewGeometryProtocol creates a protocol from barcode and UMI geometries.
func NewGeometryProtocol(barcode, umiGeo TagGeometry) *GeometryProtocol {
	p := &GeometryProtocol{}
	p.SetBarcodeGeometry(barcode)
	p.SetUMIGeometry(umiGeo)
	return p
}

// SetBarcodeGeometry installs the barcode geometry. It must be called before
// the protocol is shared.
func (p *GeometryProtocol) SetBarcodeGeometry(g TagGeometry) { p.bcGeo = g }

// SetUMIGeometry installs the UMI geometry. It must be called before the
// protocol is shared.
func (p *GeometryProtocol) SetUMIGeometry(g TagGeometry) { p.umiGeo = g }

// BarcodeGeometry returns the barcode geometry.
func (p *GeometryProtocol) BarcodeGeometry() TagGeometry { return p.bcGeo }

// UMIGeometry returns the UMI geometry.
func (p *GeometryProtocol) UMIGeometry() TagGeometry { return p.umiGeo }

// Name implements Protocol.
func (p *GeometryProtocol) Name() string { return "Geometry" }

// BarcodeLength implements Protocol. It is the length of the barcode geometry.
func (p *GeometryProtocol) BarcodeLength() int { return p.bcGeo.Length() }

// UMILength implements Protocol. It is the length of the UMI geometry.
func (p *GeometryProtocol) UMILength() int { return p.umiGeo.Length() }

// ExtractBarcode implements Protocol.
func (p *GeometryProtocol) ExtractBarcode(dst []byte, reads []string) ([]byte, bool) {
	return p.bcGeo.extractFrom(dst, reads)
}

// ExtractUMI implements Protocol.
func (p *GeometryProtocol) ExtractUMI(dst []byte, reads []string) ([]byte, bool) {
	return p.umiGeo.extractFrom(dst, reads)
}

// String describes the two geometries.
func (p *GeometryProtocol) String() string {
	return fmt.Sprintf("barcode %v, umi %v", p.bcGeo, p.umiGeo)
}

// Configure sets the process-wide UMI k-mer width to p.UMILength() and
// freezes it. It must be called once, before any goroutine encodes UMIs.
// Calling it again with a protocol of the same UMI length is a no-op.
func Configure(p Protocol) error {
	k := p.UMILength()
	if umi.Frozen() {
		if umi.Width() == k {
			return nil
		}
		return errors.E(errors.Precondition,
			fmt.Sprintf("protocol %s: UMI width already frozen at %d, want %d", p.Name(), umi.Width(), k))
	}
	if err := umi.SetWidth(k); err != nil {
		return errors.E(err, fmt.Sprintf("protocol %s", p.Name()))
	}
	umi.Freeze()
	log.Debug.Printf("protocol %s: barcode length %d, UMI length %d", p.Name(), p.BarcodeLength(), k)
	return nil
}
