// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package protocol

import "strings"

// BarcodeEnd is the end of the barcode read that a fixed-length
// barcode+UMI block is anchored to.
type BarcodeEnd uint8

const (
	// FivePrime anchors the block at the start of the read.
	FivePrime BarcodeEnd = iota
	// ThreePrime anchors the block at the end of the read.
	ThreePrime
)

// String returns "FIVE" or "THREE".
func (e BarcodeEnd) String() string {
	switch e {
	case FivePrime:
		return "FIVE"
	case ThreePrime:
		return "THREE"
	}
	return "UNKNOWN"
}

// Rule is a fixed-length protocol: a barcode of BarcodeLength() bases
// followed by a UMI of UMILength() bases, read from read 0 of a read set. A
// Rule is immutable.
//
// If the block is anchored at the 5' end, the barcode is read[0:b] and the
// UMI is read[b:b+u]. If it is anchored at the 3' end, the block occupies the
// last b+u bases of the read, barcode first.
type Rule struct {
	name          string
	barcodeLength int
	umiLength     int
	end           BarcodeEnd
	maxValue      uint32
}

// NewRule creates a fixed-length rule. maxValue is the largest integer a
// barcode encodes to; callers normally pass MaxBarcodeValue(barcodeLength).
func NewRule(name string, barcodeLength, umiLength int, end BarcodeEnd, maxValue uint32) Rule {
	return Rule{
		name:          name,
		barcodeLength: barcodeLength,
		umiLength:     umiLength,
		end:           end,
		maxValue:      maxValue,
	}
}

// Chemistry presets. Lengths and ceilings are fixed by the library prep.

// DropSeq: 12bp barcode, 8bp UMI.
func DropSeq() Rule { return NewRule("DropSeq", 12, 8, FivePrime, 16777216) }

// ChromiumV3 is 10x Chromium v3: 16bp barcode, 12bp UMI.
func ChromiumV3() Rule { return NewRule("ChromiumV3", 16, 12, FivePrime, 4294967295) }

// Chromium is 10x Chromium v2: 16bp barcode, 10bp UMI.
func Chromium() Rule { return NewRule("Chromium", 16, 10, FivePrime, 4294967295) }

// Gemcode is 10x GemCode (v1): 14bp barcode, 10bp UMI.
func Gemcode() Rule { return NewRule("Gemcode", 14, 10, FivePrime, 268435456) }

// QuartzSeq2: 15bp barcode, 8bp UMI.
func QuartzSeq2() Rule { return NewRule("QuartzSeq2", 15, 8, FivePrime, 1073741824) }

// CELSeq: 8bp barcode, 6bp UMI.
func CELSeq() Rule { return NewRule("CELSeq", 8, 6, FivePrime, 65536) }

// CELSeq2 is WEHI SCORE's CEL-Seq2: 6bp barcode, 6bp UMI.
func CELSeq2() Rule { return NewRule("CELSeq2", 6, 6, FivePrime, 4096) }

// Custom is the placeholder rule used before a geometry is supplied. All of
// its lengths are zero.
func Custom() Rule { return NewRule("Custom", 0, 0, FivePrime, 0) }

// Name implements Protocol.
func (r Rule) Name() string { return r.name }

// BarcodeLength implements Protocol.
func (r Rule) BarcodeLength() int { return r.barcodeLength }

// UMILength implements Protocol.
func (r Rule) UMILength() int { return r.umiLength }

// End implements Encodable.
func (r Rule) End() BarcodeEnd { return r.end }

// MaxValue implements Encodable.
func (r Rule) MaxValue() uint32 { return r.maxValue }

// blockStart returns the offset of the barcode in read, or -1 if the read is
// too short to hold the barcode+UMI block.
func (r Rule) blockStart(read string) int {
	n := r.barcodeLength + r.umiLength
	if len(read) < n {
		return -1
	}
	if r.end == ThreePrime {
		return len(read) - n
	}
	return 0
}

// ExtractBarcode implements Protocol.
func (r Rule) ExtractBarcode(dst []byte, reads []string) ([]byte, bool) {
	if len(reads) == 0 {
		return dst, false
	}
	start := r.blockStart(reads[0])
	if start < 0 {
		return dst, false
	}
	return append(dst, reads[0][start:start+r.barcodeLength]...), true
}

// ExtractUMI implements Protocol.
func (r Rule) ExtractUMI(dst []byte, reads []string) ([]byte, bool) {
	if len(reads) == 0 {
		return dst, false
	}
	start := r.blockStart(reads[0])
	if start < 0 {
		return dst, false
	}
	start += r.barcodeLength
	return append(dst, reads[0][start:start+r.umiLength]...), true
}

// InDrop barcodes are split in two by the W1 adapter: a variable-length first
// part (8 to 12bp) before W1 and a fixed 8bp second part after it, followed by
// the 6bp UMI.
type InDrop struct {
	Rule
	w1 string
}

const (
	inDropMinBC1 = 8
	inDropMaxBC1 = 12
	inDropBC2    = 8
)

// NewInDrop creates an inDrop protocol. The barcode length, 42, is the
// maximum span of the barcode region including W1.
func NewInDrop() *InDrop {
	return &InDrop{Rule: NewRule("InDrop", 42, 6, FivePrime, 22347776)}
}

// SetW1 sets the W1 adapter sequence. It is not validated.
func (p *InDrop) SetW1(w1 string) { p.w1 = w1 }

// W1 returns the W1 adapter sequence.
func (p *InDrop) W1() string { return p.w1 }

// locate returns the offset of W1 in read, which is also the length of the
// first barcode part, or ok=false if the read does not have the inDrop
// layout. Only offsets 8 to 12 are searched, so a W1 match elsewhere in the
// read is ignored.
func (p *InDrop) locate(reads []string) (w1Pos int, ok bool) {
	if len(reads) == 0 || p.w1 == "" {
		return -1, false
	}
	read := reads[0]
	for w1Pos = inDropMinBC1; w1Pos <= inDropMaxBC1 && w1Pos < len(read); w1Pos++ {
		if !strings.HasPrefix(read[w1Pos:], p.w1) {
			continue
		}
		if len(read) < w1Pos+len(p.w1)+inDropBC2+p.umiLength {
			return -1, false
		}
		return w1Pos, true
	}
	return -1, false
}

// ExtractBarcode implements Protocol. The barcode is the concatenation of the
// bases before W1 and the 8 bases after it.
func (p *InDrop) ExtractBarcode(dst []byte, reads []string) ([]byte, bool) {
	w1Pos, ok := p.locate(reads)
	if !ok {
		return dst, false
	}
	read := reads[0]
	bc2 := w1Pos + len(p.w1)
	dst = append(dst, read[:w1Pos]...)
	return append(dst, read[bc2:bc2+inDropBC2]...), true
}

// ExtractUMI implements Protocol.
func (p *InDrop) ExtractUMI(dst []byte, reads []string) ([]byte, bool) {
	w1Pos, ok := p.locate(reads)
	if !ok {
		return dst, false
	}
	start := w1Pos + len(p.w1) + inDropBC2
	return append(dst, reads[0][start:start+p.umiLength]...), true
}

// FeatureRead is the index of the read that carries a CITE-seq feature tag.
const FeatureRead = 1

// CITESeq is a Chromium-style layout plus a feature (antibody) barcode in
// the second read.
type CITESeq struct {
	Rule
	featureStart  int
	featureLength int
}

// NewCITESeq creates a CITE-seq protocol with the feature tag at [10, 25) of
// the feature read.
func NewCITESeq() *CITESeq {
	return &CITESeq{
		Rule:          NewRule("CITESeq", 16, 10, FivePrime, 4294967295),
		featureStart:  10,
		featureLength: 15,
	}
}

// SetFeatureStart sets the 0-based offset of the feature tag.
func (p *CITESeq) SetFeatureStart(start int) { p.featureStart = start }

// SetFeatureLength sets the length of the feature tag.
func (p *CITESeq) SetFeatureLength(length int) { p.featureLength = length }

// FeatureStart returns the 0-based offset of the feature tag.
func (p *CITESeq) FeatureStart() int { return p.featureStart }

// FeatureLength returns the length of the feature tag.
func (p *CITESeq) FeatureLength() int { return p.featureLength }

// ExtractFeature appends the feature tag of reads[FeatureRead] to dst.
func (p *CITESeq) ExtractFeature(dst []byte, reads []string) ([]byte, bool) {
	if len(reads) <= FeatureRead || p.featureStart < 0 || p.featureLength < 0 {
		return dst, false
	}
	read := reads[FeatureRead]
	end := p.featureStart + p.featureLength
	if len(read) < end {
		return dst, false
	}
	return append(dst, read[p.featureStart:end]...), true
}
