package tagging

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/sctag/encoding/fastq"
	"github.com/grailbio/sctag/protocol"
	"github.com/grailbio/sctag/umi"
)

// Tagger extracts the barcode and UMI of read sets. It is immutable and safe
// for concurrent use.
type Tagger struct {
	p          protocol.Protocol
	enc        umi.Encoder
	cite       *protocol.CITESeq
	nReads     int
	outputRead int
}

// NewTagger creates a tagger for read sets of nReads reads. outputRead is
// the read written by Tag, or -1 for the last read.
func NewTagger(p protocol.Protocol, nReads, outputRead int) (*Tagger, error) {
	if min := protocol.MinReads(p); nReads < min {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("protocol %s needs %d reads per set, got %d", p.Name(), min, nReads))
	}
	if outputRead < 0 {
		outputRead = nReads - 1
	}
	if outputRead >= nReads {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("output read %d out of range, there are %d reads per set", outputRead+1, nReads))
	}
	enc, err := umi.NewEncoder(p.UMILength())
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("protocol %s", p.Name()))
	}
	t := &Tagger{p: p, enc: enc, nReads: nReads, outputRead: outputRead}
	t.cite, _ = p.(*protocol.CITESeq)
	return t, nil
}

// Tagged is the result of tagging one read set.
type Tagged struct {
	// ID is the output read ID, "@<name>_<barcode>_<umi>[ <comment>]". For
	// CITE-seq the feature tag follows the UMI: "@<name>_<barcode>_<umi>_<feature>".
	ID      string
	Barcode string
	UMI     string
	// Feature is the CITE-seq feature tag, empty for other protocols.
	Feature string
	// Read is the read to write under ID.
	Read *fastq.Read
}

// Tag extracts the tags of reads, which must have one read per read number,
// and updates stats. ok is false if the read set was dropped.
func (t *Tagger) Tag(reads []fastq.Read, stats *Stats) (tagged Tagged, ok bool) {
	stats.ReadSets++
	seqs := make([]string, len(reads))
	for i := range reads {
		seqs[i] = reads[i].Seq
	}
	buf, ok1 := t.p.ExtractBarcode(make([]byte, 0, t.p.BarcodeLength()+t.p.UMILength()), seqs)
	nBC := len(buf)
	buf, ok2 := t.p.ExtractUMI(buf, seqs)
	nUMI := len(buf)
	if !ok1 || !ok2 {
		stats.ShortReads++
		return Tagged{}, false
	}
	if t.cite != nil {
		var ok3 bool
		if buf, ok3 = t.cite.ExtractFeature(buf, seqs); !ok3 {
			stats.ShortReads++
			stats.ShortFeatures++
			return Tagged{}, false
		}
	}
	stats.Tagged++
	umiSeq := buf[nBC:nUMI]
	if _, encodable := t.enc.Encode(umiSeq); !encodable {
		stats.UMIsWithN++
	}
	tagged = Tagged{
		Barcode: string(buf[:nBC]),
		UMI:     string(umiSeq),
		Feature: string(buf[nUMI:]),
		Read:    &reads[t.outputRead],
	}
	if t.cite != nil {
		tagged.ID = tagID(reads[t.outputRead].ID, tagged.Barcode, tagged.UMI, tagged.Feature)
	} else {
		tagged.ID = tagID(reads[t.outputRead].ID, tagged.Barcode, tagged.UMI)
	}
	return tagged, true
}

// tagID appends "_<tag>" for each tag to the name part of a FASTQ ID.
func tagID(id string, tags ...string) string {
	b := strings.Builder{}
	n := len(id) + 1
	for _, tag := range tags {
		n += len(tag) + 1
	}
	b.Grow(n)
	if len(id) == 0 || id[0] != '@' {
		b.WriteByte('@')
	}
	i := 0
	for i < len(id) && id[i] != ' ' && id[i] != '\t' {
		b.WriteByte(id[i])
		i++
	}
	for _, tag := range tags {
		b.WriteByte('_')
		b.WriteString(tag)
	}
	b.WriteString(id[i:])
	return b.String()
}
